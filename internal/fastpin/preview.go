package fastpin

import "sync"

// PreviewBuffer is the single-slot holder for "captured but not yet
// committed" clipboard content plus the tag names chosen for it. It has two
// states: idle (no snapshot) and previewing (one snapshot pending). A new
// snapshot always replaces the pending one and drops its working tags —
// latest wins, nothing is queued.
//
// All methods are safe for concurrent use; transitions are strictly
// sequential under one mutex.
type PreviewBuffer struct {
	mu   sync.Mutex
	snap *Snapshot
	tags []string
}

func NewPreviewBuffer() *PreviewBuffer {
	return &PreviewBuffer{}
}

// Replace installs a new snapshot, discarding any pending one together with
// its working tag list.
func (b *PreviewBuffer) Replace(snap *Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = snap
	b.tags = nil
}

// Previewing reports whether a snapshot is pending.
func (b *PreviewBuffer) Previewing() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap != nil
}

// Snapshot returns the pending snapshot, or nil when idle.
func (b *PreviewBuffer) Snapshot() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// AddTag appends a tag name to the working list. The name does not need to
// exist as a persisted tag yet; resolution happens at commit. Duplicate
// names are collapsed. Returns ErrNotPreviewing when idle.
func (b *PreviewBuffer) AddTag(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.snap == nil {
		return ErrNotPreviewing
	}
	for _, t := range b.tags {
		if t == name {
			return nil
		}
	}
	b.tags = append(b.tags, name)
	return nil
}

// RemoveTag removes a tag name from the working list. Removing a name that
// is not on the list is a no-op.
func (b *PreviewBuffer) RemoveTag(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.snap == nil {
		return ErrNotPreviewing
	}
	for i, t := range b.tags {
		if t == name {
			b.tags = append(b.tags[:i], b.tags[i+1:]...)
			return nil
		}
	}
	return nil
}

// Tags returns a copy of the working tag list.
func (b *PreviewBuffer) Tags() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.tags...)
}

// commit runs fn with the pending snapshot and working tags while holding
// the buffer lock, so a concurrent Replace cannot interleave with the
// commit. fn reports whether the item became durable: if so the buffer
// clears even when fn also returns an error (partial tag failure), otherwise
// the buffer stays previewing and the commit is retryable.
func (b *PreviewBuffer) commit(fn func(snap *Snapshot, tags []string) (persisted bool, err error)) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.snap == nil {
		return ErrNotPreviewing
	}
	persisted, err := fn(b.snap, b.tags)
	if persisted {
		b.snap = nil
		b.tags = nil
	}
	return err
}

// Discard clears the pending snapshot and working tags without touching the
// store. Returns ErrNotPreviewing when idle.
func (b *PreviewBuffer) Discard() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.snap == nil {
		return ErrNotPreviewing
	}
	b.snap = nil
	b.tags = nil
	return nil
}
