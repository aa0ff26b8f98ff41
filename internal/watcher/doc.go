// Package watcher drives the local inbox poll loop. A scanner lists
// unprocessed media files under the inbox root, a stability probe confirms
// the sync client has finished writing each one, and a processor is invoked
// per stable file. Every completed attempt is recorded in the processed-file
// ledger; unstable or unreadable files stay unmarked and are retried on the
// next cycle.
package watcher
