// Package stability decides whether a file in the inbox has finished being
// written. Sync clients append to files in place for minutes at a time, so
// readiness is inferred from two size samples taken a fixed wait apart rather
// than from filesystem events.
package stability

import (
	"context"
	"os"
	"time"
)

// SleepFunc suspends the caller for d or until ctx is done. Tests substitute
// an immediate return.
type SleepFunc func(ctx context.Context, d time.Duration) error

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Probe samples file sizes across a wait window.
type Probe struct {
	wait  time.Duration
	sleep SleepFunc
}

// New builds a Probe with the given wait window.
func New(wait time.Duration) *Probe {
	return &Probe{wait: wait, sleep: defaultSleep}
}

// NewWithSleep builds a Probe with a custom sleep function (used in tests).
func NewWithSleep(wait time.Duration, sleep SleepFunc) *Probe {
	if sleep == nil {
		sleep = defaultSleep
	}
	return &Probe{wait: wait, sleep: sleep}
}

// Wait returns the probe's sampling window.
func (p *Probe) Wait() time.Duration { return p.wait }

// IsStable reports whether path's size held steady and non-zero across the
// wait window. Any stat failure (vanished file, permissions) or context
// cancellation yields false; the caller skips the file and retries on a
// later cycle. Safe to call repeatedly against a still-growing file.
func (p *Probe) IsStable(ctx context.Context, path string) bool {
	first, err := os.Stat(path)
	if err != nil {
		return false
	}
	if err := p.sleep(ctx, p.wait); err != nil {
		return false
	}
	second, err := os.Stat(path)
	if err != nil {
		return false
	}
	return first.Size() == second.Size() && second.Size() > 0
}
