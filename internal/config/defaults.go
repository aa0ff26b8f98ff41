package config

const (
	defaultInboxDir     = "~/inlet/inbox"
	defaultDataDir      = "~/.local/share/inlet/data"
	defaultLogDir       = "~/.local/share/inlet/logs"
	defaultAPIBind      = "127.0.0.1:7313"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	defaultStoragePrefix = "inlet"

	// Local watch loop timing (seconds).
	defaultWatcherPollInterval = 10
	defaultWatcherStableWait   = 30

	// Remote meeting poll loop.
	defaultMeetingsPollInterval = 300
	defaultMeetingsWindowDays   = 7
	defaultMeetingsUserLabel    = "default"
	defaultMeetingsAPIBaseURL   = "https://api.zoom.us/v2"
	defaultMeetingsOAuthURL     = "https://zoom.us/oauth/token"

	defaultTranscriberBaseURL      = "https://api.assemblyai.com"
	defaultTranscriberPollInterval = 3

	defaultNotifyRequestTimeout = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir: defaultInboxDir,
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Watcher: Watcher{
			Enabled:      true,
			PollInterval: defaultWatcherPollInterval,
			StableWait:   defaultWatcherStableWait,
		},
		Meetings: Meetings{
			APIBaseURL:    defaultMeetingsAPIBaseURL,
			OAuthTokenURL: defaultMeetingsOAuthURL,
			WindowDays:    defaultMeetingsWindowDays,
			PollInterval:  defaultMeetingsPollInterval,
			UserLabel:     defaultMeetingsUserLabel,
		},
		Storage: Storage{
			Prefix: defaultStoragePrefix,
			Region: "us-east-1",
		},
		Transcriber: Transcriber{
			BaseURL:      defaultTranscriberBaseURL,
			PollInterval: defaultTranscriberPollInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Transcripts:    true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
