package mirror_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"inlet/internal/logging"
	"inlet/internal/mirror"
)

func writeLocal(t *testing.T, dir, name string, size int) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestSaveWritesLocalAndRemote(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := mirror.NewMemoryStore()
	w := mirror.NewWriter(root, store, logging.NewNop())

	path, err := w.Save(ctx, "inlet/meetings/2026-08-25/standup", "transcript.vtt", []byte("WEBVTT\n"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read local artifact: %v", err)
	}
	if string(data) != "WEBVTT\n" {
		t.Fatalf("unexpected local content %q", data)
	}

	remote, err := store.Get(ctx, "inlet/meetings/2026-08-25/standup/transcript.vtt")
	if err != nil {
		t.Fatalf("remote copy missing: %v", err)
	}
	if string(remote) != "WEBVTT\n" {
		t.Fatalf("unexpected remote content %q", remote)
	}
}

func TestSaveLocalOnly(t *testing.T) {
	root := t.TempDir()
	w := mirror.NewWriter(root, nil, logging.NewNop())

	path, err := w.Save(context.Background(), "inlet/files", "note.transcript.txt", []byte("hello"))
	if err != nil {
		t.Fatalf("Save without store must succeed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("local artifact missing: %v", err)
	}
}

func TestSyncUpSkipsSameSize(t *testing.T) {
	ctx := context.Background()
	local := t.TempDir()
	writeLocal(t, local, "a.txt", 10)
	writeLocal(t, local, "b.txt", 20)

	store := mirror.NewMemoryStore()
	if err := store.Put(ctx, "backup/a.txt", make([]byte, 10)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	w := mirror.NewWriter(t.TempDir(), store, logging.NewNop())
	uploaded, err := w.SyncUp(ctx, "backup", local)
	if err != nil {
		t.Fatalf("SyncUp: %v", err)
	}
	if uploaded != 1 {
		t.Fatalf("expected exactly b.txt uploaded, got %d", uploaded)
	}
	if _, err := store.Get(ctx, "backup/b.txt"); err != nil {
		t.Fatalf("b.txt missing from store: %v", err)
	}
}

func TestSyncUpReplacesSizeMismatch(t *testing.T) {
	ctx := context.Background()
	local := t.TempDir()
	writeLocal(t, local, "a.txt", 15)

	store := mirror.NewMemoryStore()
	if err := store.Put(ctx, "backup/a.txt", make([]byte, 10)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	w := mirror.NewWriter(t.TempDir(), store, logging.NewNop())
	uploaded, err := w.SyncUp(ctx, "backup", local)
	if err != nil {
		t.Fatalf("SyncUp: %v", err)
	}
	if uploaded != 1 {
		t.Fatalf("size mismatch must re-upload, got %d uploads", uploaded)
	}
	data, err := store.Get(ctx, "backup/a.txt")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(data) != 15 {
		t.Fatalf("expected replacement with 15 bytes, got %d", len(data))
	}
}

func TestSyncDownSkipsSameSize(t *testing.T) {
	ctx := context.Background()
	store := mirror.NewMemoryStore()
	if err := store.Put(ctx, "backup/a.txt", make([]byte, 10)); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	if err := store.Put(ctx, "backup/b.txt", make([]byte, 20)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	local := t.TempDir()
	writeLocal(t, local, "a.txt", 10)

	w := mirror.NewWriter(t.TempDir(), store, logging.NewNop())
	fetched, err := w.SyncDown(ctx, "backup", local)
	if err != nil {
		t.Fatalf("SyncDown: %v", err)
	}
	if fetched != 1 {
		t.Fatalf("expected exactly b.txt fetched, got %d", fetched)
	}
	info, err := os.Stat(filepath.Join(local, "b.txt"))
	if err != nil {
		t.Fatalf("b.txt missing locally: %v", err)
	}
	if info.Size() != 20 {
		t.Fatalf("unexpected b.txt size %d", info.Size())
	}
}

func TestSyncDownNestedKeys(t *testing.T) {
	ctx := context.Background()
	store := mirror.NewMemoryStore()
	if err := store.Put(ctx, "backup/2026-08-25/standup/transcript.vtt", []byte("WEBVTT")); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	local := t.TempDir()
	w := mirror.NewWriter(t.TempDir(), store, logging.NewNop())
	fetched, err := w.SyncDown(ctx, "backup", local)
	if err != nil {
		t.Fatalf("SyncDown: %v", err)
	}
	if fetched != 1 {
		t.Fatalf("expected one fetch, got %d", fetched)
	}
	if _, err := os.Stat(filepath.Join(local, "2026-08-25", "standup", "transcript.vtt")); err != nil {
		t.Fatalf("nested artifact not recreated: %v", err)
	}
}

func TestSyncUpMissingLocalDir(t *testing.T) {
	w := mirror.NewWriter(t.TempDir(), mirror.NewMemoryStore(), logging.NewNop())
	uploaded, err := w.SyncUp(context.Background(), "backup", filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("missing local dir must not error: %v", err)
	}
	if uploaded != 0 {
		t.Fatalf("expected zero uploads, got %d", uploaded)
	}
}

func TestSyncNoStoreConfigured(t *testing.T) {
	w := mirror.NewWriter(t.TempDir(), nil, logging.NewNop())
	if n, err := w.SyncDown(context.Background(), "backup", t.TempDir()); err != nil || n != 0 {
		t.Fatalf("SyncDown without store: n=%d err=%v", n, err)
	}
	if n, err := w.SyncUp(context.Background(), "backup", t.TempDir()); err != nil || n != 0 {
		t.Fatalf("SyncUp without store: n=%d err=%v", n, err)
	}
}
