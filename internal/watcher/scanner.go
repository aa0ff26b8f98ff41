package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"inlet/internal/fileutil"
	"inlet/internal/ledger"
	"inlet/internal/logging"
)

// supportedExtensions is the media allow-list, matched case-insensitively.
var supportedExtensions = map[string]struct{}{
	".mp4": {}, ".avi": {}, ".mov": {}, ".mkv": {}, ".webm": {},
	".mp3": {}, ".wav": {}, ".m4a": {}, ".aac": {}, ".ogg": {},
}

// IsSupportedFile reports whether path carries a recognized media extension.
func IsSupportedFile(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Scanner lists inbox files that still need processing.
type Scanner struct {
	root   string
	ledger *ledger.Store
	logger *slog.Logger
}

// NewScanner builds a Scanner over root.
func NewScanner(root string, store *ledger.Store, logger *slog.Logger) *Scanner {
	return &Scanner{
		root:   root,
		ledger: store,
		logger: logging.WithComponent(logger, "watcher"),
	}
}

// FindNew walks the inbox recursively and returns the canonical absolute
// paths of supported files not yet blocked by the ledger, in lexical order.
// A missing inbox is a non-fatal condition: the sync client may not have
// created it yet, so log and return nothing.
func (s *Scanner) FindNew(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(s.root); err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("inbox directory does not exist",
				logging.String(logging.FieldPath, s.root))
			return nil, nil
		}
		return nil, err
	}

	blocked, err := s.ledger.BlockedIdentities(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []string
	walkErr := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A vanished subtree mid-walk is transient; skip it.
			s.logger.Warn("skipping unreadable path",
				logging.String(logging.FieldPath, path), logging.Error(err))
			return nil
		}
		if d.IsDir() || !IsSupportedFile(path) {
			return nil
		}
		canonical, err := fileutil.CanonicalPath(path)
		if err != nil {
			s.logger.Warn("cannot canonicalize path",
				logging.String(logging.FieldPath, path), logging.Error(err))
			return nil
		}
		if _, done := blocked[canonical]; done {
			return nil
		}
		candidates = append(candidates, canonical)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(candidates)
	return candidates, nil
}
