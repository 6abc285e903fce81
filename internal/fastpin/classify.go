package fastpin

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	// Registered so image.Decode recognizes the formats pasteboards and
	// image files commonly carry. PNG is also the canonical encoding.
	_ "image/gif"
	_ "image/jpeg"
)

// imageExtensions are file extensions treated as image content when they
// arrive via a file-drop list.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".ico":  true,
	".webp": true,
}

// Classify turns one raw clipboard read into a typed Snapshot.
//
// Priority order: text, then image, then file-drop list. For file-drop lists
// only the first path is inspected; later paths in a multi-file drop are
// ignored. A first path with a known image extension that exists and decodes
// is classified as an Image snapshot rather than File.
//
// Returns ErrNoContent when the read holds none of the supported formats.
func Classify(c Contents, now time.Time) (*Snapshot, error) {
	if c.Text != "" {
		return &Snapshot{
			Type:       TypeText,
			Text:       c.Text,
			RichText:   c.RichText,
			CapturedAt: now,
			SourceApp:  c.SourceApp,
		}, nil
	}

	if len(c.Image) > 0 {
		data, w, h, err := canonicalImage(c.Image)
		if err != nil {
			return nil, fmt.Errorf("decoding clipboard image: %w", err)
		}
		return &Snapshot{
			Type:        TypeImage,
			Image:       data,
			ImageWidth:  w,
			ImageHeight: h,
			CapturedAt:  now,
			SourceApp:   c.SourceApp,
		}, nil
	}

	if len(c.FilePaths) > 0 {
		return classifyFile(c.FilePaths[0], c.SourceApp, now)
	}

	return nil, ErrNoContent
}

// classifyFile inspects a single dropped path. Image files become Image
// snapshots; anything else (including image files that fail to load or
// decode) becomes a File snapshot.
func classifyFile(path, sourceApp string, now time.Time) (*Snapshot, error) {
	if path == "" {
		return nil, ErrNoContent
	}

	info, statErr := os.Stat(path)

	ext := strings.ToLower(filepath.Ext(path))
	if imageExtensions[ext] && statErr == nil {
		if snap, err := imageFileSnapshot(path, sourceApp, now); err == nil {
			return snap, nil
		}
		// Unreadable or undecodable image file: fall through to File.
	}

	snap := &Snapshot{
		Type:       TypeFile,
		FilePath:   path,
		FileName:   filepath.Base(path),
		CapturedAt: now,
		SourceApp:  sourceApp,
	}
	if statErr == nil {
		snap.FileSize = info.Size()
	}
	return snap, nil
}

// imageFileSnapshot loads an image file from disk and classifies it as
// image content.
func imageFileSnapshot(path, sourceApp string, now time.Time) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}

	data, w, h, err := canonicalImage(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding image file: %w", err)
	}

	return &Snapshot{
		Type:        TypeImage,
		Image:       data,
		ImageWidth:  w,
		ImageHeight: h,
		CapturedAt:  now,
		SourceApp:   sourceApp,
	}, nil
}

// canonicalImage decodes raw image bytes and re-encodes them as PNG,
// returning the encoded bytes and pixel dimensions.
func canonicalImage(raw []byte) ([]byte, int, int, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, 0, 0, err
	}

	bounds := img.Bounds()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, 0, 0, fmt.Errorf("encoding png: %w", err)
	}

	return buf.Bytes(), bounds.Dx(), bounds.Dy(), nil
}
