package fastpin

import "time"

// Snapshot is an immutable classification of one clipboard read. It is
// transient: the preview buffer holds at most one, and a newer snapshot
// silently replaces it. Exactly one payload group is populated, selected by
// Type.
type Snapshot struct {
	Type   ItemType
	Source ItemSource

	Text     string
	RichText string

	Image       []byte
	ImageWidth  int
	ImageHeight int

	FilePath string
	FileName string
	FileSize int64

	CapturedAt time.Time
	SourceApp  string
}

// Item builds a new PinnedItem from the snapshot, copying payload fields
// verbatim. CreatedAt and ModifiedAt are both set to now.
func (s *Snapshot) Item(now time.Time) *PinnedItem {
	item := &PinnedItem{
		Type:              s.Type,
		Source:            s.Source,
		SourceApplication: s.SourceApp,
		CreatedAt:         now,
		ModifiedAt:        now,
	}
	switch s.Type {
	case TypeText:
		item.TextContent = s.Text
		item.RichTextContent = s.RichText
	case TypeImage:
		item.ImageData = s.Image
		item.ImageWidth = s.ImageWidth
		item.ImageHeight = s.ImageHeight
		item.FileSize = int64(len(s.Image))
	case TypeFile:
		item.FilePath = s.FilePath
		item.FileName = s.FileName
		item.FileSize = s.FileSize
	}
	return item
}
