package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"inlet/internal/config"
	"inlet/internal/daemon"
	"inlet/internal/ledger"
	"inlet/internal/meetings"
	"inlet/internal/mirror"
	"inlet/internal/notifications"
	"inlet/internal/stability"
	"inlet/internal/status"
	"inlet/internal/transcribe"
	"inlet/internal/watcher"
)

// buildDaemon assembles the full dependency graph from configuration. Disabled
// subsystems leave the corresponding loop nil.
func buildDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	state := status.New()
	notifier := notifications.NewService(cfg)

	writer, err := buildMirror(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	var watch *watcher.Watcher
	if cfg.Watcher.Enabled {
		watch, err = buildWatcher(cfg, writer, notifier, state, logger)
		if err != nil {
			return nil, err
		}
	}

	var poller *meetings.Poller
	if cfg.Meetings.Enabled {
		poller, err = buildPoller(cfg, writer, notifier, state, logger)
		if err != nil {
			return nil, err
		}
	}

	return daemon.New(daemon.Options{
		Config:  cfg,
		Logger:  logger,
		State:   state,
		Watcher: watch,
		Poller:  poller,
		Mirror:  writer,
	})
}

func buildMirror(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*mirror.Writer, error) {
	var store mirror.ObjectStore
	if cfg.Storage.Bucket != "" {
		s3store, err := mirror.NewS3Store(ctx, mirror.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Endpoint:  cfg.Storage.Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("object store: %w", err)
		}
		store = s3store
	}
	return mirror.NewWriter(cfg.Paths.DataDir, store, logger), nil
}

func buildWatcher(cfg *config.Config, writer *mirror.Writer, notifier notifications.Service, state *status.State, logger *slog.Logger) (*watcher.Watcher, error) {
	fileLedger, err := ledger.Open(cfg.Paths.LedgerPath, ledger.RetryOnEveryCycleUntilSuccess, logger)
	if err != nil {
		return nil, fmt.Errorf("file ledger: %w", err)
	}

	client := transcribe.NewClient(
		cfg.Transcriber.BaseURL,
		cfg.Transcriber.APIKey,
		time.Duration(cfg.Transcriber.PollInterval)*time.Second,
	)
	processor := transcribe.NewProcessor(client, writer, cfg.Storage.Prefix, cfg.Transcriber.LanguageCode, notifier, logger)

	return watcher.New(watcher.Options{
		Scanner:   watcher.NewScanner(cfg.Paths.InboxDir, fileLedger, logger),
		Probe:     stability.New(time.Duration(cfg.Watcher.StableWait) * time.Second),
		Processor: processor,
		Ledger:    fileLedger,
		State:     state,
		Logger:    logger,
		Interval:  time.Duration(cfg.Watcher.PollInterval) * time.Second,
	}), nil
}

func buildPoller(cfg *config.Config, writer *mirror.Writer, notifier notifications.Service, state *status.State, logger *slog.Logger) (*meetings.Poller, error) {
	meetingLedger, err := ledger.Open(cfg.Meetings.LedgerPath, ledger.RetryNeverOnceAttempted, logger)
	if err != nil {
		return nil, fmt.Errorf("meeting ledger: %w", err)
	}

	tokens, err := meetings.NewTokenManager(
		cfg.Meetings.ClientID,
		cfg.Meetings.ClientSecret,
		cfg.Meetings.OAuthTokenURL,
		cfg.Meetings.UserLabel,
		cfg.Meetings.TokenPath,
	)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	return meetings.NewPoller(meetings.PollerOptions{
		Client:     meetings.NewClient(cfg.Meetings.APIBaseURL, tokens, nil),
		Tokens:     tokens,
		Ledger:     meetingLedger,
		Mirror:     writer,
		Prefix:     cfg.Storage.Prefix,
		State:      state,
		Notifier:   notifier,
		Logger:     logger,
		WindowDays: cfg.Meetings.WindowDays,
		Interval:   time.Duration(cfg.Meetings.PollInterval) * time.Second,
	}), nil
}
