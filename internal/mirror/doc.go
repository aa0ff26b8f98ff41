// Package mirror persists pipeline artifacts to local disk and, when
// configured, to a remote object store under identical relative keys.
//
// Change detection for bulk sync is size equality only (SizeHeuristicSync):
// an object is skipped when a counterpart of identical byte length exists.
// A changed file that happens to keep its length is silently skipped and an
// unchanged file whose length differs is re-transferred. This matches the
// deployed behavior and must not be upgraded to content hashing without
// flagging the change.
package mirror
