// Package meetings pulls cloud recording transcripts from the meeting
// platform's REST API. A TokenManager keeps the OAuth access token fresh from
// a stored refresh token, the Client lists recordings and downloads VTT
// transcripts, and the Poller drives the fixed-interval cycle that archives
// new transcripts through the mirror and the processed-meeting ledger.
package meetings
