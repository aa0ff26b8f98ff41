// Package transcribe turns media files into speaker-attributed text
// transcripts using a hosted transcription API. The client uploads the raw
// media, submits a diarization job, and polls until the vendor reports a
// terminal status. A processor wraps the client for the inbox pipeline and
// writes the transcript beside the source file and into the mirror.
package transcribe
