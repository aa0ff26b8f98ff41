package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"inlet/internal/logging"
)

// schemaVersion is the current schema version. Bump this when the schema
// changes; mismatched databases are moved aside and recreated.
const schemaVersion = 1

const schemaSQL = `
CREATE TABLE IF NOT EXISTS processed_items (
    identity     TEXT PRIMARY KEY,
    processed_at TEXT NOT NULL,
    success      INTEGER NOT NULL,
    detail       TEXT
);
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER NOT NULL
);
`

// Entry is one recorded processing attempt. An identity has at most one
// entry; later attempts overwrite earlier ones.
type Entry struct {
	Identity    string
	ProcessedAt time.Time
	Success     bool
	Detail      string
}

// Store is a durable processed-identity ledger backed by SQLite. Writes are
// write-through; there is no in-memory cache to lose on a crash. Each loop
// owns exactly one Store, so no cross-process locking is layered on top of
// SQLite's own busy handling.
type Store struct {
	db     *sql.DB
	path   string
	policy RetryPolicy
}

// Open connects to (or creates) the ledger database at path. A database that
// cannot be opened or migrated is moved aside and recreated empty: losing
// dedup history costs reprocessing, refusing to ingest costs lost items.
func Open(path string, policy RetryPolicy, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	store, err := open(path, policy)
	if err == nil {
		return store, nil
	}

	logger.Warn("ledger database unreadable, starting empty",
		logging.String(logging.FieldPath, path),
		logging.Error(err),
	)
	aside := fmt.Sprintf("%s.corrupt-%s", path, time.Now().UTC().Format("20060102T150405"))
	if renameErr := os.Rename(path, aside); renameErr != nil && !errors.Is(renameErr, os.ErrNotExist) {
		return nil, fmt.Errorf("move corrupt ledger aside: %w", renameErr)
	}
	return open(path, policy)
}

func open(path string, policy RetryPolicy) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = FULL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, policy: policy}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != schemaVersion:
		return fmt.Errorf("ledger schema version mismatch: database has %d, expected %d", version, schemaVersion)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the location of the backing database file.
func (s *Store) Path() string { return s.path }

// Policy returns the retry policy this ledger enforces.
func (s *Store) Policy() RetryPolicy { return s.policy }

// IsProcessed reports whether identity is blocked from another attempt under
// this ledger's retry policy.
func (s *Store) IsProcessed(ctx context.Context, identity string) (bool, error) {
	entry, err := s.Entry(ctx, identity)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}
	if s.policy == RetryOnEveryCycleUntilSuccess {
		return entry.Success, nil
	}
	return true, nil
}

// MarkProcessed upserts the entry for identity and persists it immediately.
func (s *Store) MarkProcessed(ctx context.Context, identity string, success bool, detail string) error {
	if identity == "" {
		return errors.New("identity is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO processed_items (identity, processed_at, success, detail)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(identity) DO UPDATE SET
             processed_at = excluded.processed_at,
             success = excluded.success,
             detail = excluded.detail`,
		identity,
		now,
		boolToInt(success),
		nullableString(detail),
	)
	if err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	return nil
}

// Entry fetches the recorded attempt for identity, or nil if none exists.
func (s *Store) Entry(ctx context.Context, identity string) (*Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT identity, processed_at, success, detail FROM processed_items WHERE identity = ?`,
		identity,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// BlockedIdentities returns the set of identities that IsProcessed would
// report as blocked. The meeting poller prefetches this once per cycle
// instead of issuing a query per listed meeting.
func (s *Store) BlockedIdentities(ctx context.Context) (map[string]struct{}, error) {
	query := `SELECT identity FROM processed_items`
	if s.policy == RetryOnEveryCycleUntilSuccess {
		query += ` WHERE success = 1`
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blocked identities: %w", err)
	}
	defer rows.Close()

	blocked := make(map[string]struct{})
	for rows.Next() {
		var identity string
		if err := rows.Scan(&identity); err != nil {
			return nil, err
		}
		blocked[identity] = struct{}{}
	}
	return blocked, rows.Err()
}

// List returns all entries ordered by most recent attempt first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT identity, processed_at, success, detail FROM processed_items ORDER BY processed_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM processed_items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return count, nil
}

// Clear removes all entries. Exposed for the CLI; the engine never deletes.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM processed_items`)
	if err != nil {
		return 0, fmt.Errorf("clear ledger: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		identity     string
		processedRaw string
		success      int64
		detail       sql.NullString
	)
	if err := scanner.Scan(&identity, &processedRaw, &success, &detail); err != nil {
		return nil, err
	}
	entry := &Entry{
		Identity: identity,
		Success:  success != 0,
		Detail:   detail.String,
	}
	if t, err := time.Parse(time.RFC3339Nano, processedRaw); err == nil {
		entry.ProcessedAt = t
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
