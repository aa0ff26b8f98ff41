package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"inlet/internal/config"
	"inlet/internal/logging"
	"inlet/internal/meetings"
	"inlet/internal/mirror"
	"inlet/internal/status"
	"inlet/internal/watcher"
)

// Daemon owns the two poll loops and the lifecycle around them.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	state   *status.State
	watcher *watcher.Watcher
	poller  *meetings.Poller
	mirror  *mirror.Writer

	lockPath string
	lock     *flock.Flock

	api *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Options wires a Daemon's collaborators. Watcher and Poller may each be nil
// when the corresponding subsystem is disabled.
type Options struct {
	Config  *config.Config
	Logger  *slog.Logger
	State   *status.State
	Watcher *watcher.Watcher
	Poller  *meetings.Poller
	Mirror  *mirror.Writer
}

// New constructs a daemon with initialized dependencies.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil || opts.Logger == nil || opts.State == nil {
		return nil, errors.New("daemon requires config, logger, and state")
	}
	if opts.Watcher == nil && opts.Poller == nil {
		return nil, errors.New("daemon requires at least one enabled loop")
	}

	lockPath := filepath.Join(opts.Config.Paths.DataDir, "inletd.lock")
	d := &Daemon{
		cfg:      opts.Config,
		logger:   logging.WithComponent(opts.Logger, "daemon"),
		state:    opts.State,
		watcher:  opts.Watcher,
		poller:   opts.Poller,
		mirror:   opts.Mirror,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.state.SetModules(opts.Watcher != nil, opts.Poller != nil, opts.Mirror != nil && opts.Mirror.Remote())

	api, err := newAPIServer(opts.Config.Paths.APIBind, d.state, d.logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// LockPath returns the location of the single-instance lock file.
func (d *Daemon) LockPath() string { return d.lockPath }

// Start acquires the instance lock, resyncs the mirror, and launches the
// poll loops. It returns once everything is running.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another inlet daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	d.resync(runCtx)

	if d.watcher != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.watcher.Run(runCtx)
		}()
	}
	if d.poller != nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.poller.Run(runCtx)
		}()
	}

	if d.api != nil {
		if err := d.api.start(runCtx); err != nil {
			d.Stop()
			return err
		}
	}

	d.running.Store(true)
	d.logger.Info("inlet daemon started", logging.String("lock", d.lockPath))
	return nil
}

// resync pulls previously archived artifacts down from the object store so a
// rebuilt host starts with its local tree intact. Failure is logged, not
// fatal: the mirror is a replica, not the source of truth for ingestion.
func (d *Daemon) resync(ctx context.Context) {
	if d.mirror == nil || !d.mirror.Remote() {
		return
	}
	prefix := d.cfg.Storage.Prefix
	fetched, err := d.mirror.SyncDown(ctx, prefix, filepath.Join(d.mirror.Root(), prefix))
	if err != nil {
		d.logger.Warn("startup mirror resync failed", logging.Error(err))
		d.state.RecordError(fmt.Sprintf("resync: %s", err))
		return
	}
	if fetched > 0 {
		d.logger.Info("restored artifacts from object store", logging.Int(logging.FieldCount, fetched))
	}
}

// Stop cancels the loops, waits for them to drain, and releases the lock.
func (d *Daemon) Stop() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if d.api != nil {
		d.api.stop()
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	if d.running.Swap(false) {
		d.logger.Info("inlet daemon stopped")
	}
}

// Wait blocks until ctx is cancelled, then stops the daemon.
func (d *Daemon) Wait(ctx context.Context) {
	<-ctx.Done()
	d.Stop()
}
