package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"inlet/internal/meetings"
	"inlet/internal/preflight"
	"inlet/internal/testsupport"
)

func TestRunAllPassesOnFreshConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := preflight.RunAll(cfg)
	if len(results) == 0 {
		t.Fatal("expected checks to run")
	}
	if failed := preflight.Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected required failures: %+v", failed)
	}
}

func TestRunAllFlagsMissingTranscriberKey(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcriber.APIKey = ""
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	failed := preflight.Failed(preflight.RunAll(cfg))
	if len(failed) != 1 {
		t.Fatalf("expected exactly the key check to fail, got %+v", failed)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	if res := preflight.CheckDirectoryAccess("dir", dir); !res.Passed {
		t.Fatalf("writable temp dir must pass: %+v", res)
	}
	if res := preflight.CheckDirectoryAccess("dir", filepath.Join(dir, "missing")); res.Passed {
		t.Fatalf("missing dir must fail: %+v", res)
	}
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if res := preflight.CheckDirectoryAccess("dir", file); res.Passed {
		t.Fatalf("plain file must fail: %+v", res)
	}
}

func TestCheckLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	if res := preflight.CheckLedger("ledger", path); !res.Passed {
		t.Fatalf("fresh ledger must pass: %+v", res)
	}
}

func TestCheckTranscriberKey(t *testing.T) {
	if res := preflight.CheckTranscriberKey(""); res.Passed {
		t.Fatal("empty key must fail")
	}
	if res := preflight.CheckTranscriberKey("key"); !res.Passed {
		t.Fatal("configured key must pass")
	}
}

func TestCheckMeetingCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "auth.json")

	res := preflight.CheckMeetingCredential(path)
	if res.Passed || !res.Optional {
		t.Fatalf("missing credential must be an advisory failure: %+v", res)
	}

	if err := meetings.NewFileTokenStore(path).Save(meetings.Credential{RefreshToken: "linked"}); err != nil {
		t.Fatalf("seed credential: %v", err)
	}
	if res := preflight.CheckMeetingCredential(path); !res.Passed {
		t.Fatalf("linked credential must pass: %+v", res)
	}
}

func TestFailedFiltersOptional(t *testing.T) {
	results := []preflight.Result{
		{Name: "required-ok", Passed: true},
		{Name: "required-bad"},
		{Name: "optional-bad", Optional: true},
	}
	failed := preflight.Failed(results)
	if len(failed) != 1 || failed[0].Name != "required-bad" {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}
