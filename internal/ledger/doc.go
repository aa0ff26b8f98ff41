// Package ledger persists the set of already-handled item identities.
//
// Each ingestion loop owns one ledger instance: the inbox watcher keys
// entries by canonical file path, the meeting poller by meeting UUID. Both
// share the same SQLite-backed store; they differ only in retry policy,
// which controls whether a failed attempt blocks the identity from being
// picked up again.
package ledger
