package mirror

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"inlet/internal/fileutil"
	"inlet/internal/logging"
)

// Object describes one stored remote object.
type Object struct {
	Key  string
	Size int64
}

// ObjectStore is the narrow surface the mirror needs from a remote store.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]Object, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
}

// Writer performs dual writes to a local root and an optional object store.
type Writer struct {
	root   string
	store  ObjectStore
	logger *slog.Logger
}

// NewWriter builds a Writer rooted at root. store may be nil for local-only
// operation.
func NewWriter(root string, store ObjectStore, logger *slog.Logger) *Writer {
	return &Writer{
		root:   root,
		store:  store,
		logger: logging.WithComponent(logger, "mirror"),
	}
}

// Root returns the local storage root.
func (w *Writer) Root() string { return w.root }

// Remote reports whether an object store is configured.
func (w *Writer) Remote() bool { return w.store != nil }

// Save writes data to root/prefix/filename, unconditionally overwriting, and
// uploads it under prefix/filename when a store is configured. The local path
// is returned; a remote failure does not undo the local write.
func (w *Writer) Save(ctx context.Context, prefix, filename string, data []byte) (string, error) {
	localPath := filepath.Join(w.root, filepath.FromSlash(prefix), filename)
	if err := fileutil.WriteFileAtomic(localPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write local artifact: %w", err)
	}

	if w.store != nil {
		key := joinKey(prefix, filename)
		if err := w.store.Put(ctx, key, data); err != nil {
			return localPath, fmt.Errorf("upload artifact %s: %w", key, err)
		}
		w.logger.Debug("artifact mirrored", logging.String("key", key), logging.Int("bytes", len(data)))
	}
	return localPath, nil
}

// SyncDown downloads every remote object under prefix into localDir,
// skipping objects whose local counterpart already has the same size.
// Returns the number of files fetched.
func (w *Writer) SyncDown(ctx context.Context, prefix, localDir string) (int, error) {
	if w.store == nil {
		return 0, nil
	}
	objects, err := w.store.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("list remote objects: %w", err)
	}

	count := 0
	for _, obj := range objects {
		rel := strings.TrimPrefix(strings.TrimPrefix(obj.Key, prefix), "/")
		if rel == "" {
			continue
		}
		localPath := filepath.Join(localDir, filepath.FromSlash(rel))
		if info, err := os.Stat(localPath); err == nil && info.Size() == obj.Size {
			continue
		}
		data, err := w.store.Get(ctx, obj.Key)
		if err != nil {
			return count, fmt.Errorf("fetch %s: %w", obj.Key, err)
		}
		if err := fileutil.WriteFileAtomic(localPath, data, 0o644); err != nil {
			return count, fmt.Errorf("write %s: %w", localPath, err)
		}
		count++
	}
	return count, nil
}

// SyncUp uploads every file under localDir to the store under prefix,
// skipping files whose remote counterpart already has the same size.
// Returns the number of files uploaded.
func (w *Writer) SyncUp(ctx context.Context, prefix, localDir string) (int, error) {
	if w.store == nil {
		return 0, nil
	}
	if _, err := os.Stat(localDir); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("stat local dir: %w", err)
	}

	objects, err := w.store.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("list remote objects: %w", err)
	}
	existing := make(map[string]int64, len(objects))
	for _, obj := range objects {
		existing[obj.Key] = obj.Size
	}

	count := 0
	walkErr := filepath.WalkDir(localDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(localDir, path)
		if err != nil {
			return err
		}
		key := joinKey(prefix, filepath.ToSlash(rel))
		if size, ok := existing[key]; ok && size == info.Size() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := w.store.Put(ctx, key, data); err != nil {
			return fmt.Errorf("upload %s: %w", key, err)
		}
		count++
		return nil
	})
	if walkErr != nil {
		return count, walkErr
	}
	return count, nil
}

func joinKey(prefix, name string) string {
	prefix = strings.Trim(prefix, "/")
	name = strings.TrimPrefix(name, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
