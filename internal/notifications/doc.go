// Package notifications pushes operator-facing events to an ntfy topic.
// Without a configured topic every notification is a no-op; notification
// failures are reported to callers but never interrupt the pipeline.
package notifications
