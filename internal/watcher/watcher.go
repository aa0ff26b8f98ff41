package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"inlet/internal/ledger"
	"inlet/internal/logging"
	"inlet/internal/stability"
	"inlet/internal/status"
)

// Processor handles one stable inbox file. A returned error marks the file
// as a failed attempt; under the watcher ledger's retry policy it stays
// eligible until a later attempt succeeds.
type Processor interface {
	Process(ctx context.Context, path string) error
}

// Watcher owns the local inbox poll loop.
type Watcher struct {
	scanner   *Scanner
	probe     *stability.Probe
	processor Processor
	ledger    *ledger.Store
	state     *status.State
	logger    *slog.Logger
	interval  time.Duration
}

// Options wires a Watcher's collaborators.
type Options struct {
	Scanner   *Scanner
	Probe     *stability.Probe
	Processor Processor
	Ledger    *ledger.Store
	State     *status.State
	Logger    *slog.Logger
	Interval  time.Duration
}

// New builds a Watcher.
func New(opts Options) *Watcher {
	interval := opts.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Watcher{
		scanner:   opts.Scanner,
		probe:     opts.Probe,
		processor: opts.Processor,
		ledger:    opts.Ledger,
		state:     opts.State,
		logger:    logging.WithComponent(opts.Logger, "watcher"),
		interval:  interval,
	}
}

// Run scans until ctx is cancelled. Cycle errors are recorded and logged but
// never stop the loop.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info("inbox watcher started",
		logging.Duration("interval", w.interval),
		logging.Duration("stable_wait", w.probe.Wait()))

	for {
		if err := w.RunCycle(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("scan cycle failed", logging.Error(err))
			w.state.RecordError(fmt.Sprintf("watcher: %s", err))
		}

		select {
		case <-ctx.Done():
			w.logger.Info("inbox watcher stopped")
			return
		case <-time.After(w.interval):
		}
	}
}

// RunCycle performs a single scan-and-process pass. Candidates are handled
// strictly in scanner order; cancellation is observed between items so an
// in-flight file is never abandoned half-marked.
func (w *Watcher) RunCycle(ctx context.Context) error {
	candidates, err := w.scanner.FindNew(ctx)
	if err != nil {
		return err
	}

	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		w.logger.Info("new file detected", logging.String(logging.FieldPath, path))
		if !w.probe.IsStable(ctx, path) {
			w.logger.Warn("file not stable yet, skipping",
				logging.String(logging.FieldPath, path))
			continue
		}

		err := w.processor.Process(ctx, path)
		success := err == nil
		detail := ""
		if err != nil {
			detail = err.Error()
			w.logger.Error("processing failed",
				logging.String(logging.FieldPath, path), logging.Error(err))
		} else {
			w.logger.Info("processing completed",
				logging.String(logging.FieldPath, filepath.Base(path)))
		}

		if markErr := w.ledger.MarkProcessed(ctx, path, success, detail); markErr != nil {
			return markErr
		}
		w.state.RecordFileProcessed(success)
	}
	return nil
}
