package fastpin

import "context"

// Store provides durable storage for pinned items and tags. Implementations
// live in internal/database; the service layer only depends on this
// interface.
//
// Lookup methods return (nil, nil) when the row does not exist.
type Store interface {
	// Item operations

	// InsertItem persists a new item and assigns its ID.
	InsertItem(ctx context.Context, item *PinnedItem) error

	// UpdateItem rewrites all mutable columns of an existing item.
	UpdateItem(ctx context.Context, item *PinnedItem) error

	// DeleteItem removes an item; its tag links cascade, tags stay.
	DeleteItem(ctx context.Context, id int64) error

	// FindItem returns an item with its linked tags loaded.
	FindItem(ctx context.Context, id int64) (*PinnedItem, error)

	// QueryItems returns items matching the filter, with linked tags
	// loaded, ordered by CreatedAt descending.
	QueryItems(ctx context.Context, f Filter) ([]*PinnedItem, error)

	// Tag operations

	// GetOrCreateTag returns the tag named name, creating it if absent.
	// Atomic under concurrent callers: the name's uniqueness constraint
	// guarantees a single row, never an application-level check-then-insert.
	GetOrCreateTag(ctx context.Context, name string) (*Tag, error)

	// FindTagByName returns the tag with the exact name.
	FindTagByName(ctx context.Context, name string) (*Tag, error)

	// DeleteTag removes a tag; its item links cascade, items stay.
	DeleteTag(ctx context.Context, id int64) error

	// ListTags returns all tags sorted by name.
	ListTags(ctx context.Context) ([]*Tag, error)

	// LinkItemTag associates a tag with an item. Linking an already-linked
	// pair is a no-op (the pair is unique).
	LinkItemTag(ctx context.Context, itemID, tagID int64) error

	// UnlinkItemTag removes the association. Unlinking a missing pair is a
	// no-op.
	UnlinkItemTag(ctx context.Context, itemID, tagID int64) error

	Close() error
}

// StoreOpener opens a fresh Store handle. Background operations (file-cache
// reads) must each open their own handle: handles are not safe to share
// across concurrently running background operations.
type StoreOpener func() (Store, error)
