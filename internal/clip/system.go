// Package clip reads and writes the operating system clipboard.
package clip

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"fastpin/internal/fastpin"
)

var initOnce sync.Once
var initErr error

// initClipboard initializes the underlying clipboard package once per
// process. Init fails when no display is available (e.g. headless CI).
func initClipboard() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

// SystemClipboard reads the OS clipboard. Text is favored over images
// when both formats are present, matching the capture classification
// order.
type SystemClipboard struct{}

// NewSystemClipboard initializes clipboard access and returns a reader
// backed by the OS clipboard.
func NewSystemClipboard() (*SystemClipboard, error) {
	if err := initClipboard(); err != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	return &SystemClipboard{}, nil
}

func (c *SystemClipboard) Read() (fastpin.Contents, error) {
	var contents fastpin.Contents

	if text := clipboard.Read(clipboard.FmtText); len(text) > 0 {
		contents.Text = string(text)
		return contents, nil
	}

	if img := clipboard.Read(clipboard.FmtImage); len(img) > 0 {
		contents.Image = img
	}
	return contents, nil
}

// WriteText places text on the OS clipboard.
func (c *SystemClipboard) WriteText(text string) error {
	if err := initClipboard(); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// WriteImage places PNG-encoded image data on the OS clipboard.
func (c *SystemClipboard) WriteImage(data []byte) error {
	if err := initClipboard(); err != nil {
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// Compile-time check that SystemClipboard implements fastpin.ClipboardReader
var _ fastpin.ClipboardReader = (*SystemClipboard)(nil)
