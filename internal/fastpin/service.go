package fastpin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PinService is the orchestration layer that coordinates the capture →
// classify → preview → commit lifecycle against the Store.
type PinService struct {
	store   Store
	preview *PreviewBuffer
	logger  Logger
	clock   Clock
}

// NewPinService creates a new PinService with the provided dependencies.
func NewPinService(store Store, preview *PreviewBuffer, logger Logger, clock Clock) *PinService {
	return &PinService{
		store:   store,
		preview: preview,
		logger:  logger,
		clock:   clock,
	}
}

// Preview returns the service's preview buffer.
func (s *PinService) Preview() *PreviewBuffer { return s.preview }

// Capture classifies one clipboard read and installs the result as the
// pending preview, replacing any prior unpinned snapshot. An unclassifiable
// read (ErrNoContent) leaves the buffer untouched and is not an error for
// the capture flow; it is logged for diagnostics only. Classification
// failures never propagate to the clipboard-event callback.
func (s *PinService) Capture(c Contents) {
	snap, err := Classify(c, s.clock.Now())
	if err != nil {
		if errors.Is(err, ErrNoContent) {
			s.logger.Debug("capture skipped", "reason", "no supported content")
		} else {
			s.logger.Debug("capture failed", "error", err)
		}
		return
	}

	s.preview.Replace(snap)
	s.logger.Debug("snapshot previewed", "type", snap.Type.String(), "source_app", snap.SourceApp)
}

// CommitPreview turns the pending snapshot into a persisted item tagged with
// the preview's working tag list plus any extra names given.
//
// Failure semantics: if the item insert fails, nothing is persisted and the
// buffer keeps the snapshot, so the commit is retryable. If the insert
// succeeds but resolving or linking a tag fails, the item stays (untagged or
// partially tagged), the buffer clears, and the failure is surfaced — no
// rollback.
func (s *PinService) CommitPreview(ctx context.Context, extraTags []string) (*PinnedItem, error) {
	var committed *PinnedItem

	err := s.preview.commit(func(snap *Snapshot, tags []string) (bool, error) {
		item := snap.Item(s.clock.Now())
		if err := s.store.InsertItem(ctx, item); err != nil {
			return false, &PersistenceError{Op: "insert item", Err: err}
		}
		committed = item

		names := mergeTagNames(tags, extraTags)
		if err := s.applyTags(ctx, item, names); err != nil {
			return true, err
		}

		s.logger.Info("preview committed", "item_id", item.ID, "type", item.Type.String(), "tags", len(names))
		return true, nil
	})

	return committed, err
}

// DiscardPreview drops the pending snapshot and its working tags without any
// store access.
func (s *PinService) DiscardPreview() error {
	if err := s.preview.Discard(); err != nil {
		return err
	}
	s.logger.Debug("preview discarded")
	return nil
}

// QuickPin persists a snapshot directly, bypassing the preview buffer. Used
// by the hotkey path and the explicit pin commands.
func (s *PinService) QuickPin(ctx context.Context, snap *Snapshot) (*PinnedItem, error) {
	item := snap.Item(s.clock.Now())
	if err := s.store.InsertItem(ctx, item); err != nil {
		return nil, &PersistenceError{Op: "insert item", Err: err}
	}
	s.logger.Info("item pinned", "item_id", item.ID, "type", item.Type.String())
	return item, nil
}

// PinFile persists a file reference without going through the clipboard.
// The file must exist; its size is recorded and caching starts disabled.
func (s *PinService) PinFile(ctx context.Context, path string) (*PinnedItem, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &FileAccessError{Path: path, Err: fmt.Errorf("is a directory")}
	}

	now := s.clock.Now()
	item := &PinnedItem{
		Type:       TypeFile,
		FilePath:   path,
		FileName:   filepath.Base(path),
		FileSize:   info.Size(),
		Source:     SourceManual,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := s.store.InsertItem(ctx, item); err != nil {
		return nil, &PersistenceError{Op: "insert item", Err: err}
	}
	s.logger.Info("file pinned", "item_id", item.ID, "path", path)
	return item, nil
}

// DeleteItem removes an item; its tag links cascade, the tags themselves
// stay.
func (s *PinService) DeleteItem(ctx context.Context, id int64) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return &PersistenceError{Op: "delete item", Err: err}
	}
	s.logger.Info("item deleted", "item_id", id)
	return nil
}

// AddTag links the named tag to an item, creating the tag on first use.
// Tagging an item with a name it already carries is a no-op.
func (s *PinService) AddTag(ctx context.Context, itemID int64, name string) error {
	tag, err := s.store.GetOrCreateTag(ctx, name)
	if err != nil {
		return &PersistenceError{Op: "get or create tag", Err: err}
	}
	if err := s.store.LinkItemTag(ctx, itemID, tag.ID); err != nil {
		return &PersistenceError{Op: "link tag", Err: err}
	}
	return nil
}

// RemoveTag unlinks the named tag from an item. The tag itself is never
// deleted here, even when this was its last link.
func (s *PinService) RemoveTag(ctx context.Context, itemID int64, name string) error {
	tag, err := s.store.FindTagByName(ctx, name)
	if err != nil {
		return &PersistenceError{Op: "find tag", Err: err}
	}
	if tag == nil {
		return nil
	}
	if err := s.store.UnlinkItemTag(ctx, itemID, tag.ID); err != nil {
		return &PersistenceError{Op: "unlink tag", Err: err}
	}
	return nil
}

// DeleteTag removes a tag everywhere: its item links cascade, other tags are
// untouched.
func (s *PinService) DeleteTag(ctx context.Context, id int64) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return &PersistenceError{Op: "delete tag", Err: err}
	}
	s.logger.Info("tag deleted", "tag_id", id)
	return nil
}

// ListTags returns all tags sorted by name.
func (s *PinService) ListTags(ctx context.Context) ([]*Tag, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list tags", Err: err}
	}
	return tags, nil
}

// Items returns items matching the filter, newest first.
func (s *PinService) Items(ctx context.Context, f Filter) ([]*PinnedItem, error) {
	items, err := s.store.QueryItems(ctx, f)
	if err != nil {
		return nil, &PersistenceError{Op: "query items", Err: err}
	}
	return items, nil
}

// GroupedItems returns items matching the filter partitioned into date
// buckets. Bucket membership is evaluated against the clock at call time,
// never cached.
func (s *PinService) GroupedItems(ctx context.Context, f Filter, labels LabelSet) ([]*ItemGroup, error) {
	items, err := s.Items(ctx, f)
	if err != nil {
		return nil, err
	}
	return GroupByDate(items, s.clock.Now(), labels), nil
}

// applyTags resolves each name through get-or-create and links it to the
// item. Stops at the first failing statement; earlier links stay.
func (s *PinService) applyTags(ctx context.Context, item *PinnedItem, names []string) error {
	for _, name := range names {
		tag, err := s.store.GetOrCreateTag(ctx, name)
		if err != nil {
			return &PersistenceError{Op: fmt.Sprintf("get or create tag %q", name), Err: err}
		}
		if err := s.store.LinkItemTag(ctx, item.ID, tag.ID); err != nil {
			return &PersistenceError{Op: fmt.Sprintf("link tag %q", name), Err: err}
		}
		item.Tags = append(item.Tags, tag)
	}
	return nil
}

// mergeTagNames combines the working list and extras, dropping duplicates
// and empty names while keeping first-seen order.
func mergeTagNames(working, extra []string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, name := range append(append([]string(nil), working...), extra...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
