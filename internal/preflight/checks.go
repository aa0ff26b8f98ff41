package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"inlet/internal/ledger"
	"inlet/internal/meetings"
)

// minFreeBytes is the floor below which the data directory is considered too
// full to accept new transcripts.
const minFreeBytes = 512 << 20 // 512 MiB

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem holding path has headroom left.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: only %d MiB free)", path, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", path, free>>20)}
}

// CheckLedger verifies the ledger database at path can be opened.
func CheckLedger(name, path string) Result {
	store, err := ledger.Open(path, ledger.RetryNeverOnceAttempted, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	_ = store.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (ok)", path)}
}

// CheckTranscriberKey verifies a transcription API key is configured.
func CheckTranscriberKey(apiKey string) Result {
	const name = "Transcriber API key"
	if strings.TrimSpace(apiKey) == "" {
		return Result{Name: name, Detail: "not configured (set transcriber.api_key or TRANSCRIBER_API_KEY)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckMeetingCredential reports whether a refresh token has been linked.
// A missing credential is advisory: linking can happen while the daemon runs.
func CheckMeetingCredential(tokenPath string) Result {
	const name = "Meeting platform credential"
	cred, err := meetings.NewFileTokenStore(tokenPath).Load()
	if err != nil {
		return Result{Name: name, Optional: true, Detail: fmt.Sprintf("unreadable: %v", err)}
	}
	if strings.TrimSpace(cred.RefreshToken) == "" {
		return Result{Name: name, Optional: true, Detail: "not linked (meeting polling will idle until linked)"}
	}
	return Result{Name: name, Passed: true, Optional: true, Detail: "linked"}
}
