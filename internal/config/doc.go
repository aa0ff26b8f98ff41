// Package config loads, normalizes, and validates inlet configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TRANSCRIBER_API_KEY. The Config type centralizes every knob the daemon and
// CLI need: the watched inbox, ledger locations, meeting-platform credentials,
// and the object-store mirror.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
