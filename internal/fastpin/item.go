package fastpin

import "time"

// ItemType identifies the payload kind of a pinned item.
type ItemType int

const (
	TypeText ItemType = iota
	TypeImage
	TypeFile
)

func (t ItemType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeImage:
		return "image"
	case TypeFile:
		return "file"
	default:
		return "unknown"
	}
}

// ParseItemType converts a string (as used by CLI flags and the database)
// back into an ItemType.
func ParseItemType(s string) (ItemType, bool) {
	switch s {
	case "text":
		return TypeText, true
	case "image":
		return TypeImage, true
	case "file":
		return TypeFile, true
	default:
		return 0, false
	}
}

// ItemSource records how an item entered the history.
type ItemSource int

const (
	SourceClipboard ItemSource = iota
	SourceManual
	SourceUnknown
)

func (s ItemSource) String() string {
	switch s {
	case SourceClipboard:
		return "clipboard"
	case SourceManual:
		return "manual"
	default:
		return "unknown"
	}
}

// PinnedItem is one persisted unit of captured content. Exactly one payload
// group is populated, selected by Type: TextContent (+RichTextContent) for
// text, ImageData (+ImageWidth/ImageHeight) for images, FilePath+FileName for
// files. CachedFileData is present iff IsCached.
type PinnedItem struct {
	ID   int64
	Type ItemType

	TextContent     string
	RichTextContent string

	ImageData   []byte
	ImageWidth  int
	ImageHeight int

	FilePath       string
	FileName       string
	CachedFileData []byte
	IsCached       bool

	FileSize          int64
	Source            ItemSource
	SourceApplication string

	CreatedAt  time.Time
	ModifiedAt time.Time

	// Tags linked to this item, loaded by Store queries.
	Tags []*Tag
}

// HasTag reports whether the item carries a tag with the given name.
// Matching is exact and case-sensitive, like the store's tag lookup.
func (p *PinnedItem) HasTag(name string) bool {
	for _, t := range p.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Tag is a named label with an independent lifecycle: created on first use
// by name, deleted only explicitly, never garbage-collected when its last
// item link goes away.
type Tag struct {
	ID    int64
	Name  string
	Color string
	Class string
}
