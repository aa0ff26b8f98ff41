package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeMeetings(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeTranscriber()
	c.normalizeWatcher()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InboxDir, err = expandPath(c.Paths.InboxDir); err != nil {
		return fmt.Errorf("paths.inbox_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LedgerPath) == "" {
		c.Paths.LedgerPath = filepath.Join(c.Paths.InboxDir, "processed_files.db")
	}
	if c.Paths.LedgerPath, err = expandPath(c.Paths.LedgerPath); err != nil {
		return fmt.Errorf("paths.ledger_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeMeetings() error {
	var err error
	if c.Meetings.ClientID == "" {
		if value, ok := os.LookupEnv("MEETINGS_CLIENT_ID"); ok {
			c.Meetings.ClientID = value
		}
	}
	if c.Meetings.ClientSecret == "" {
		if value, ok := os.LookupEnv("MEETINGS_CLIENT_SECRET"); ok {
			c.Meetings.ClientSecret = value
		}
	}
	c.Meetings.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Meetings.APIBaseURL), "/")
	if c.Meetings.APIBaseURL == "" {
		c.Meetings.APIBaseURL = defaultMeetingsAPIBaseURL
	}
	c.Meetings.OAuthTokenURL = strings.TrimSpace(c.Meetings.OAuthTokenURL)
	if c.Meetings.OAuthTokenURL == "" {
		c.Meetings.OAuthTokenURL = defaultMeetingsOAuthURL
	}
	if strings.TrimSpace(c.Meetings.TokenPath) == "" {
		c.Meetings.TokenPath = filepath.Join(c.Paths.DataDir, "meetings_auth.json")
	}
	if c.Meetings.TokenPath, err = expandPath(c.Meetings.TokenPath); err != nil {
		return fmt.Errorf("meetings.token_path: %w", err)
	}
	if strings.TrimSpace(c.Meetings.LedgerPath) == "" {
		c.Meetings.LedgerPath = filepath.Join(c.Paths.DataDir, "meetings.db")
	}
	if c.Meetings.LedgerPath, err = expandPath(c.Meetings.LedgerPath); err != nil {
		return fmt.Errorf("meetings.ledger_path: %w", err)
	}
	if c.Meetings.WindowDays <= 0 {
		c.Meetings.WindowDays = defaultMeetingsWindowDays
	}
	if c.Meetings.PollInterval <= 0 {
		c.Meetings.PollInterval = defaultMeetingsPollInterval
	}
	if strings.TrimSpace(c.Meetings.UserLabel) == "" {
		c.Meetings.UserLabel = defaultMeetingsUserLabel
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Bucket = strings.TrimSpace(c.Storage.Bucket)
	if c.Storage.Bucket == "" {
		if value, ok := os.LookupEnv("S3_BUCKET"); ok {
			c.Storage.Bucket = strings.TrimSpace(value)
		}
	}
	c.Storage.Region = strings.TrimSpace(c.Storage.Region)
	if c.Storage.Region == "" {
		if value, ok := os.LookupEnv("AWS_REGION"); ok {
			c.Storage.Region = strings.TrimSpace(value)
		}
	}
	c.Storage.Prefix = strings.Trim(strings.TrimSpace(c.Storage.Prefix), "/")
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = defaultStoragePrefix
	}
}

func (c *Config) normalizeTranscriber() {
	if c.Transcriber.APIKey == "" {
		if value, ok := os.LookupEnv("TRANSCRIBER_API_KEY"); ok {
			c.Transcriber.APIKey = value
		}
	}
	c.Transcriber.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcriber.BaseURL), "/")
	if c.Transcriber.BaseURL == "" {
		c.Transcriber.BaseURL = defaultTranscriberBaseURL
	}
	if c.Transcriber.PollInterval <= 0 {
		c.Transcriber.PollInterval = defaultTranscriberPollInterval
	}
}

func (c *Config) normalizeWatcher() {
	if c.Watcher.PollInterval <= 0 {
		c.Watcher.PollInterval = defaultWatcherPollInterval
	}
	if c.Watcher.StableWait <= 0 {
		c.Watcher.StableWait = defaultWatcherStableWait
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
