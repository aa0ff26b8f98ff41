package preflight

import (
	"inlet/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	results = append(results, CheckDiskSpace("Data directory space", cfg.Paths.DataDir))

	if cfg.Watcher.Enabled {
		// The inbox may not exist until the sync client creates it, so its
		// absence is only advisory.
		inbox := CheckDirectoryAccess("Inbox directory", cfg.Paths.InboxDir)
		inbox.Optional = true
		results = append(results, inbox)
		results = append(results, CheckLedger("Processed-file ledger", cfg.Paths.LedgerPath))
		results = append(results, CheckTranscriberKey(cfg.Transcriber.APIKey))
	}

	if cfg.Meetings.Enabled {
		results = append(results, CheckLedger("Processed-meeting ledger", cfg.Meetings.LedgerPath))
		results = append(results, CheckMeetingCredential(cfg.Meetings.TokenPath))
	}

	return results
}

// Failed returns the subset of required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}
