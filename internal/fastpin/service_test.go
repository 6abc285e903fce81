package fastpin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// memStore is an in-memory Store for service tests, with injectable
// failures for the commit error paths.
type memStore struct {
	items  map[int64]*PinnedItem
	tags   map[int64]*Tag
	links  map[[2]int64]bool
	nextID int64

	failInsert error
	failLink   error
}

func newMemStore() *memStore {
	return &memStore{
		items: make(map[int64]*PinnedItem),
		tags:  make(map[int64]*Tag),
		links: make(map[[2]int64]bool),
	}
}

func (s *memStore) InsertItem(_ context.Context, item *PinnedItem) error {
	if s.failInsert != nil {
		return s.failInsert
	}
	s.nextID++
	item.ID = s.nextID
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *memStore) UpdateItem(_ context.Context, item *PinnedItem) error {
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *memStore) DeleteItem(_ context.Context, id int64) error {
	delete(s.items, id)
	for link := range s.links {
		if link[0] == id {
			delete(s.links, link)
		}
	}
	return nil
}

func (s *memStore) FindItem(_ context.Context, id int64) (*PinnedItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	copied := *item
	return &copied, nil
}

func (s *memStore) QueryItems(_ context.Context, _ Filter) ([]*PinnedItem, error) {
	var items []*PinnedItem
	for _, item := range s.items {
		copied := *item
		items = append(items, &copied)
	}
	return items, nil
}

func (s *memStore) GetOrCreateTag(_ context.Context, name string) (*Tag, error) {
	for _, tag := range s.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	s.nextID++
	tag := &Tag{ID: s.nextID, Name: name}
	s.tags[tag.ID] = tag
	return tag, nil
}

func (s *memStore) FindTagByName(_ context.Context, name string) (*Tag, error) {
	for _, tag := range s.tags {
		if tag.Name == name {
			return tag, nil
		}
	}
	return nil, nil
}

func (s *memStore) DeleteTag(_ context.Context, id int64) error {
	delete(s.tags, id)
	for link := range s.links {
		if link[1] == id {
			delete(s.links, link)
		}
	}
	return nil
}

func (s *memStore) ListTags(_ context.Context) ([]*Tag, error) {
	var tags []*Tag
	for _, tag := range s.tags {
		tags = append(tags, tag)
	}
	return tags, nil
}

func (s *memStore) LinkItemTag(_ context.Context, itemID, tagID int64) error {
	if s.failLink != nil {
		return s.failLink
	}
	s.links[[2]int64{itemID, tagID}] = true
	return nil
}

func (s *memStore) UnlinkItemTag(_ context.Context, itemID, tagID int64) error {
	delete(s.links, [2]int64{itemID, tagID})
	return nil
}

func (s *memStore) Close() error { return nil }

var _ Store = (*memStore)(nil)

type serviceClock struct{ now time.Time }

func (c serviceClock) Now() time.Time { return c.now }

func newTestService(store Store) *PinService {
	clock := serviceClock{now: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	return NewPinService(store, NewPreviewBuffer(), NewNopLogger(), clock)
}

func TestPinService_CaptureThenCommit(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	svc.Capture(Contents{Text: "hello", SourceApp: "editor"})
	if !svc.Preview().Previewing() {
		t.Fatal("Previewing() = false after capture")
	}
	if err := svc.Preview().AddTag("work"); err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}

	item, err := svc.CommitPreview(context.Background(), []string{"urgent", "work"})
	if err != nil {
		t.Fatalf("CommitPreview() error = %v", err)
	}
	if item.ID == 0 {
		t.Error("committed item has no ID")
	}
	if item.TextContent != "hello" {
		t.Errorf("TextContent = %q, want %q", item.TextContent, "hello")
	}
	if item.SourceApplication != "editor" {
		t.Errorf("SourceApplication = %q, want %q", item.SourceApplication, "editor")
	}
	if !item.CreatedAt.Equal(item.ModifiedAt) {
		t.Error("CreatedAt != ModifiedAt on fresh item")
	}

	// "work" from the working list and "urgent" from extras, deduplicated.
	if len(item.Tags) != 2 {
		t.Fatalf("item has %d tags, want 2", len(item.Tags))
	}
	if len(store.links) != 2 {
		t.Errorf("store has %d links, want 2", len(store.links))
	}

	if svc.Preview().Previewing() {
		t.Error("Previewing() = true after commit")
	}
}

func TestPinService_CaptureUnclassifiable(t *testing.T) {
	svc := newTestService(newMemStore())

	svc.Capture(Contents{})
	if svc.Preview().Previewing() {
		t.Error("empty capture installed a preview")
	}

	// A bad capture must not clobber a good pending preview.
	svc.Capture(Contents{Text: "keep me"})
	svc.Capture(Contents{Image: []byte("garbage")})
	if snap := svc.Preview().Snapshot(); snap == nil || snap.Text != "keep me" {
		t.Error("failed capture replaced the pending preview")
	}
}

func TestPinService_CommitInsertFailureIsRetryable(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	svc.Capture(Contents{Text: "hello"})

	store.failInsert = errors.New("disk full")
	if _, err := svc.CommitPreview(context.Background(), nil); err == nil {
		t.Fatal("CommitPreview() error = nil, want error")
	}
	if !svc.Preview().Previewing() {
		t.Fatal("buffer cleared after failed insert; commit is not retryable")
	}

	store.failInsert = nil
	item, err := svc.CommitPreview(context.Background(), nil)
	if err != nil {
		t.Fatalf("retried CommitPreview() error = %v", err)
	}
	if item == nil || item.ID == 0 {
		t.Error("retry did not persist the item")
	}
}

func TestPinService_CommitTagFailureKeepsItem(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	svc.Capture(Contents{Text: "hello"})
	store.failLink = errors.New("link failed")

	item, err := svc.CommitPreview(context.Background(), []string{"work"})
	if err == nil {
		t.Fatal("CommitPreview() error = nil, want link error")
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Errorf("error type = %T, want *PersistenceError", err)
	}

	// The item is durable and the buffer cleared; no rollback.
	if item == nil || store.items[item.ID] == nil {
		t.Error("item not persisted despite durable insert")
	}
	if svc.Preview().Previewing() {
		t.Error("buffer still previewing after durable insert")
	}
}

func TestPinService_CommitWhenIdle(t *testing.T) {
	svc := newTestService(newMemStore())
	if _, err := svc.CommitPreview(context.Background(), nil); !errors.Is(err, ErrNotPreviewing) {
		t.Errorf("CommitPreview() error = %v, want ErrNotPreviewing", err)
	}
}

func TestPinService_PinFile(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	dir := t.TempDir()
	path := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	item, err := svc.PinFile(context.Background(), path)
	if err != nil {
		t.Fatalf("PinFile() error = %v", err)
	}
	if item.Type != TypeFile || item.Source != SourceManual {
		t.Errorf("item = (%v, %v), want (TypeFile, SourceManual)", item.Type, item.Source)
	}
	if item.FileSize != int64(len("content")) {
		t.Errorf("FileSize = %d, want %d", item.FileSize, len("content"))
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := svc.PinFile(context.Background(), filepath.Join(dir, "missing"))
		var ferr *FileAccessError
		if !errors.As(err, &ferr) {
			t.Errorf("error = %v, want *FileAccessError", err)
		}
	})

	t.Run("directory", func(t *testing.T) {
		if _, err := svc.PinFile(context.Background(), dir); err == nil {
			t.Error("PinFile(dir) error = nil, want error")
		}
	})
}

func TestPinService_RemoveUnknownTag(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store)

	item := &PinnedItem{Type: TypeText, TextContent: "x"}
	if err := store.InsertItem(context.Background(), item); err != nil {
		t.Fatal(err)
	}

	// Unknown tag names are a no-op, not an error.
	if err := svc.RemoveTag(context.Background(), item.ID, "ghost"); err != nil {
		t.Errorf("RemoveTag(unknown) error = %v, want nil", err)
	}
}
