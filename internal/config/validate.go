package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWatcher(); err != nil {
		return err
	}
	if err := c.validateMeetings(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InboxDir == "" {
		return errors.New("paths.inbox_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateWatcher() error {
	if !c.Watcher.Enabled {
		return nil
	}
	if c.Watcher.PollInterval <= 0 {
		return errors.New("watcher.poll_interval must be positive")
	}
	if c.Watcher.StableWait <= 0 {
		return errors.New("watcher.stable_wait must be positive")
	}
	return nil
}

func (c *Config) validateMeetings() error {
	if !c.Meetings.Enabled {
		return nil
	}
	if c.Meetings.ClientID == "" || c.Meetings.ClientSecret == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/inlet/config.toml"
		}
		return fmt.Errorf("meetings.client_id and meetings.client_secret are required when meetings.enabled is true. Set MEETINGS_CLIENT_ID/MEETINGS_CLIENT_SECRET env vars or edit %s (create with 'inlet config init')", defaultPath)
	}
	if c.Meetings.WindowDays <= 0 {
		return errors.New("meetings.window_days must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
