package fastpin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestCacheManager(store *memStore, maxBytes int64) *FileCacheManager {
	opener := func() (Store, error) { return store, nil }
	clock := serviceClock{now: time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC)}
	return NewFileCacheManager(opener, NewNopLogger(), clock, maxBytes)
}

func insertFileItem(t *testing.T, store *memStore, path string, size int64) *PinnedItem {
	t.Helper()
	item := &PinnedItem{
		Type:       TypeFile,
		FilePath:   path,
		FileName:   filepath.Base(path),
		FileSize:   size,
		Source:     SourceManual,
		CreatedAt:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		ModifiedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
	}
	if err := store.InsertItem(context.Background(), item); err != nil {
		t.Fatal(err)
	}
	return item
}

func TestFileCacheManager_EnableDisable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	content := []byte("file body")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	store := newMemStore()
	item := insertFileItem(t, store, path, int64(len(content)))
	mgr := newTestCacheManager(store, 0)

	if err := <-mgr.Enable(context.Background(), item.ID); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}

	got, _ := store.FindItem(context.Background(), item.ID)
	if !got.IsCached {
		t.Fatal("IsCached = false after enable")
	}
	if string(got.CachedFileData) != string(content) {
		t.Errorf("CachedFileData = %q, want %q", got.CachedFileData, content)
	}
	if got.ModifiedAt.Equal(item.ModifiedAt) {
		t.Error("ModifiedAt not bumped by enable")
	}

	if err := mgr.Disable(context.Background(), item.ID); err != nil {
		t.Fatalf("Disable() error = %v", err)
	}

	got, _ = store.FindItem(context.Background(), item.ID)
	if got.IsCached || got.CachedFileData != nil {
		t.Error("cache not cleared by disable")
	}
}

func TestFileCacheManager_EnableMissingSource(t *testing.T) {
	dir := t.TempDir()
	store := newMemStore()
	item := insertFileItem(t, store, filepath.Join(dir, "vanished.txt"), 10)
	mgr := newTestCacheManager(store, 0)

	err := <-mgr.Enable(context.Background(), item.ID)
	var ferr *FileAccessError
	if !errors.As(err, &ferr) {
		t.Fatalf("Enable() error = %v, want *FileAccessError", err)
	}

	// Failure leaves the item untouched.
	got, _ := store.FindItem(context.Background(), item.ID)
	if got.IsCached || got.CachedFileData != nil {
		t.Error("failed enable wrote cache data")
	}
}

func TestFileCacheManager_EnableOversized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(path, make([]byte, 128), 0644); err != nil {
		t.Fatal(err)
	}

	store := newMemStore()
	item := insertFileItem(t, store, path, 128)
	mgr := newTestCacheManager(store, 64)

	err := <-mgr.Enable(context.Background(), item.ID)
	var ferr *FileAccessError
	if !errors.As(err, &ferr) {
		t.Fatalf("Enable() error = %v, want *FileAccessError", err)
	}

	got, _ := store.FindItem(context.Background(), item.ID)
	if got.IsCached {
		t.Error("oversized file was cached")
	}
}

func TestFileCacheManager_EnableNonFileItem(t *testing.T) {
	store := newMemStore()
	item := &PinnedItem{Type: TypeText, TextContent: "x"}
	if err := store.InsertItem(context.Background(), item); err != nil {
		t.Fatal(err)
	}
	mgr := newTestCacheManager(store, 0)

	if err := <-mgr.Enable(context.Background(), item.ID); err == nil {
		t.Error("Enable(text item) error = nil, want error")
	}
}

func TestFileCacheManager_EnableUnknownItem(t *testing.T) {
	mgr := newTestCacheManager(newMemStore(), 0)
	if err := <-mgr.Enable(context.Background(), 999); err == nil {
		t.Error("Enable(unknown) error = nil, want error")
	}
}
