package testsupport

import (
	"path/filepath"
	"testing"

	"inlet/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InboxDir = filepath.Join(base, "inbox")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LedgerPath = filepath.Join(base, "inbox", "processed_files.db")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Meetings.LedgerPath = filepath.Join(base, "data", "meetings.db")
	cfg.Meetings.TokenPath = filepath.Join(base, "data", "meetings_auth.json")
	cfg.Transcriber.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithMeetingsApp sets the OAuth app credentials on the test config.
func WithMeetingsApp(clientID, clientSecret string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Meetings.ClientID = clientID
		cfg.Meetings.ClientSecret = clientSecret
	}
}

// WithStorageBucket enables the S3 mirror on the test config.
func WithStorageBucket(bucket, region string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Storage.Bucket = bucket
		cfg.Storage.Region = region
	}
}
