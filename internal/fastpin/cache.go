package fastpin

import (
	"context"
	"fmt"
	"io"
	"os"
)

// FileCacheManager copies a file item's bytes into the store, or clears
// them. Cache population reads the source file on a background goroutine
// and opens its own store handle per operation — handles are never shared
// across concurrently running background operations.
//
// Overlapping toggles on the same item are not serialized; the last write
// observed wins. Callers that need deterministic ordering must wait on the
// returned channel before issuing the next toggle.
type FileCacheManager struct {
	open     StoreOpener
	logger   Logger
	clock    Clock
	maxBytes int64
}

// NewFileCacheManager creates a FileCacheManager. maxBytes bounds how much
// of a source file may be cached; zero or negative means no bound.
func NewFileCacheManager(open StoreOpener, logger Logger, clock Clock, maxBytes int64) *FileCacheManager {
	return &FileCacheManager{
		open:     open,
		logger:   logger,
		clock:    clock,
		maxBytes: maxBytes,
	}
}

// Enable reads the item's source file in full and stores the bytes as the
// item's cache, setting IsCached and bumping ModifiedAt. The read and the
// store write happen on a background goroutine; the caller gets the outcome
// on the returned channel. On failure (missing or unreadable source file,
// oversized file) nothing is written and IsCached stays false.
func (m *FileCacheManager) Enable(ctx context.Context, itemID int64) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- m.populate(ctx, itemID)
	}()
	return done
}

// Disable clears the cached bytes and IsCached. No file IO is involved, so
// it runs synchronously, still on its own store handle.
func (m *FileCacheManager) Disable(ctx context.Context, itemID int64) error {
	store, err := m.open()
	if err != nil {
		return &PersistenceError{Op: "open store", Err: err}
	}
	defer store.Close()

	item, err := store.FindItem(ctx, itemID)
	if err != nil {
		return &PersistenceError{Op: "find item", Err: err}
	}
	if item == nil {
		return &PersistenceError{Op: "find item", Err: fmt.Errorf("item %d not found", itemID)}
	}

	item.CachedFileData = nil
	item.IsCached = false
	item.ModifiedAt = m.clock.Now()
	if err := store.UpdateItem(ctx, item); err != nil {
		return &PersistenceError{Op: "update item", Err: err}
	}

	m.logger.Info("file cache cleared", "item_id", itemID)
	return nil
}

func (m *FileCacheManager) populate(ctx context.Context, itemID int64) error {
	store, err := m.open()
	if err != nil {
		return &PersistenceError{Op: "open store", Err: err}
	}
	defer store.Close()

	item, err := store.FindItem(ctx, itemID)
	if err != nil {
		return &PersistenceError{Op: "find item", Err: err}
	}
	if item == nil {
		return &PersistenceError{Op: "find item", Err: fmt.Errorf("item %d not found", itemID)}
	}
	if item.Type != TypeFile {
		return &PersistenceError{Op: "cache item", Err: fmt.Errorf("item %d is not a file item", itemID)}
	}

	data, err := m.readSource(item.FilePath)
	if err != nil {
		m.logger.Warn("file cache failed", "item_id", itemID, "path", item.FilePath, "error", err)
		return err
	}

	item.CachedFileData = data
	item.IsCached = true
	item.FileSize = int64(len(data))
	item.ModifiedAt = m.clock.Now()
	if err := store.UpdateItem(ctx, item); err != nil {
		return &PersistenceError{Op: "update item", Err: err}
	}

	m.logger.Info("file cached", "item_id", itemID, "bytes", len(data))
	return nil
}

// readSource reads the whole source file, enforcing the configured size
// bound. Source files are of unbounded size; without the bound a single
// toggle could pull gigabytes into one row.
func (m *FileCacheManager) readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	if m.maxBytes <= 0 {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, &FileAccessError{Path: path, Err: err}
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(f, m.maxBytes+1))
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	if int64(len(data)) > m.maxBytes {
		return nil, &FileAccessError{Path: path, Err: fmt.Errorf("file exceeds cache limit of %d bytes", m.maxBytes)}
	}
	return data, nil
}
