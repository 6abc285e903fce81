package fastpin

// Contents is one raw read of the OS clipboard. At most one payload group is
// meaningful; Classify picks the winner by priority (text, image, files).
// SourceApp is best-effort: readers that cannot resolve the clipboard-owning
// application leave it empty and never fail the read because of it.
type Contents struct {
	Text      string
	RichText  string
	Image     []byte
	FilePaths []string
	SourceApp string
}

// Empty reports whether the read carried none of the supported formats.
func (c Contents) Empty() bool {
	return c.Text == "" && len(c.Image) == 0 && len(c.FilePaths) == 0
}

// Size returns the payload byte count across all formats. File paths count
// by path length only; the referenced file bytes are not part of a capture.
func (c Contents) Size() int64 {
	n := int64(len(c.Text)) + int64(len(c.RichText)) + int64(len(c.Image))
	for _, p := range c.FilePaths {
		n += int64(len(p))
	}
	return n
}

// ClipboardReader abstracts access to the OS clipboard. The real
// implementation lives in internal/clip; tests script reads through a stub.
type ClipboardReader interface {
	Read() (Contents, error)
}
