// Package daemon coordinates the long-running inlet process. It wires the
// inbox watcher and meeting poller into a single lifecycle with flock-based
// locking to prevent multiple instances, performs the startup mirror resync,
// and serves the local status API.
package daemon
