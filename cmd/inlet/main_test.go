package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	inbox := filepath.Join(base, "inbox")
	if err := os.MkdirAll(inbox, 0o755); err != nil {
		t.Fatalf("mkdir inbox: %v", err)
	}

	configPath := filepath.Join(base, "inlet.toml")
	content := fmt.Sprintf(`
[paths]
inbox_dir = %q
data_dir = %q
log_dir = %q
`, inbox, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath, inbox
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "config.toml")

	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, target) {
		t.Fatalf("init output missing path: %q", out)
	}

	out, _, err = runCLI(t, target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to refuse overwrite")
	}
}

func TestConfigShowRendersSettings(t *testing.T) {
	configPath, inbox := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, inbox) {
		t.Fatalf("show output missing inbox dir: %q", out)
	}
	if !strings.Contains(out, "watcher enabled") {
		t.Fatalf("show output missing watcher row: %q", out)
	}
}

func TestScanListsPendingFiles(t *testing.T) {
	configPath, inbox := writeTestConfig(t)

	for _, name := range []string{"standup.m4a", "demo.mp4", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(inbox, name), []byte("payload"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	out, _, err := runCLI(t, configPath, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "standup.m4a") || !strings.Contains(out, "demo.mp4") {
		t.Fatalf("scan output missing candidates: %q", out)
	}
	if strings.Contains(out, "notes.txt") {
		t.Fatalf("scan listed unsupported file: %q", out)
	}
	if !strings.Contains(out, "2 file(s) pending") {
		t.Fatalf("unexpected pending count: %q", out)
	}
}

func TestScanEmptyInbox(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, "scan")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !strings.Contains(out, "No new files") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestLedgerListEmptyAndClearConfirmation(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, "ledger", "list")
	if err != nil {
		t.Fatalf("ledger list: %v", err)
	}
	if !strings.Contains(out, "Ledger is empty") {
		t.Fatalf("unexpected list output: %q", out)
	}

	if _, _, err := runCLI(t, configPath, "ledger", "clear"); err == nil {
		t.Fatal("expected clear without --yes to fail")
	}

	out, _, err = runCLI(t, configPath, "ledger", "clear", "--yes")
	if err != nil {
		t.Fatalf("ledger clear --yes: %v", err)
	}
	if !strings.Contains(out, "Cleared 0 ledger entries") {
		t.Fatalf("unexpected clear output: %q", out)
	}
}

func TestAuthShowWithoutCredential(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, "auth", "show")
	if err != nil {
		t.Fatalf("auth show: %v", err)
	}
	if !strings.Contains(out, "No credential stored") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAuthSetStoresCredential(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, "auth", "set", "--refresh-token", "rt-1")
	if err != nil {
		t.Fatalf("auth set: %v", err)
	}
	if !strings.Contains(out, "Credential stored") {
		t.Fatalf("unexpected output: %q", out)
	}

	out, _, err = runCLI(t, configPath, "auth", "show")
	if err != nil {
		t.Fatalf("auth show: %v", err)
	}
	if !strings.Contains(out, "access token cached") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	configPath, _ := writeTestConfig(t)

	out, _, err := runCLI(t, configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "nothing sent") {
		t.Fatalf("unexpected output: %q", out)
	}
}
