package daemon_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"inlet/internal/config"
	"inlet/internal/daemon"
	"inlet/internal/ledger"
	"inlet/internal/logging"
	"inlet/internal/mirror"
	"inlet/internal/stability"
	"inlet/internal/status"
	"inlet/internal/testsupport"
	"inlet/internal/watcher"
)

type countingProcessor struct {
	mu    sync.Mutex
	paths []string
}

func (p *countingProcessor) Process(_ context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, filepath.Base(path))
	return nil
}

func (p *countingProcessor) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.paths...)
}

func newTestWatcher(t *testing.T, cfg *config.Config, processor watcher.Processor) *watcher.Watcher {
	t.Helper()
	store := testsupport.MustOpenLedger(t, cfg.Paths.LedgerPath, ledger.RetryOnEveryCycleUntilSuccess)
	return watcher.New(watcher.Options{
		Scanner:   watcher.NewScanner(cfg.Paths.InboxDir, store, logging.NewNop()),
		Probe:     stability.NewWithSleep(time.Second, func(context.Context, time.Duration) error { return nil }),
		Processor: processor,
		Ledger:    store,
		State:     status.New(),
		Logger:    logging.NewNop(),
		Interval:  20 * time.Millisecond,
	})
}

func newTestDaemon(t *testing.T, cfg *config.Config, processor watcher.Processor) *daemon.Daemon {
	t.Helper()
	d, err := daemon.New(daemon.Options{
		Config:  cfg,
		Logger:  logging.NewNop(),
		State:   status.New(),
		Watcher: newTestWatcher(t, cfg, processor),
		Mirror:  mirror.NewWriter(cfg.Paths.DataDir, nil, logging.NewNop()),
	})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestNewRequiresALoop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := daemon.New(daemon.Options{
		Config: cfg,
		Logger: logging.NewNop(),
		State:  status.New(),
	})
	if err == nil {
		t.Fatal("expected error with no loops configured")
	}
}

func TestStartProcessesInboxAndStops(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InboxDir, "clip.mp4"), 4096)

	processor := &countingProcessor{}
	d := newTestDaemon(t, cfg, processor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if len(processor.processed()) > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	got := processor.processed()
	if len(got) == 0 || got[0] != "clip.mp4" {
		t.Fatalf("expected clip.mp4 processed, got %v", got)
	}

	d.Stop()
}

func TestStartRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	first := newTestDaemon(t, cfg, &countingProcessor{})
	second := newTestDaemon(t, cfg, &countingProcessor{})

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	defer first.Stop()

	err := second.Start(ctx)
	if err == nil {
		second.Stop()
		t.Fatal("second instance must be refused")
	}
	if !strings.Contains(err.Error(), "already running") {
		t.Fatalf("unexpected error: %v", err)
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("Start after release: %v", err)
	}
	second.Stop()
}
