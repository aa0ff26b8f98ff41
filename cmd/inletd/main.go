package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"inlet/internal/config"
	"inlet/internal/logging"
	"inlet/internal/preflight"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	// Optional .env in the working directory; environment variables seed
	// credentials the config file leaves blank.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, resolvedPath, exists, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stdout", filepath.Join(cfg.Paths.LogDir, "inletd.log")},
	})
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if exists {
		logger.Info("configuration loaded", logging.String(logging.FieldPath, resolvedPath))
	} else {
		logger.Warn("no configuration file found, using defaults", logging.String(logging.FieldPath, resolvedPath))
	}

	results := preflight.RunAll(cfg)
	for _, res := range results {
		if res.Passed {
			logger.Debug("preflight check passed", logging.String("check", res.Name))
			continue
		}
		if res.Optional {
			logger.Warn("preflight check failed",
				logging.String("check", res.Name),
				logging.String("detail", res.Detail))
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", res.Name),
			logging.String("detail", res.Detail))
	}
	if failed := preflight.Failed(results); len(failed) > 0 {
		logger.Error("preflight failed, refusing to start", logging.Int(logging.FieldCount, len(failed)))
		os.Exit(1)
	}

	d, err := buildDaemon(ctx, cfg, logger)
	if err != nil {
		logger.Error("build daemon", logging.Error(err))
		os.Exit(1)
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		os.Exit(1)
	}

	d.Wait(ctx)
	logger.Info("inletd shut down")
}
