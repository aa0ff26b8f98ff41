// Package preflight validates the runtime environment before the daemon
// starts its poll loops. Checks report pass/fail with a human-readable
// detail; the daemon logs failures and refuses to start only when a required
// check fails.
package preflight
