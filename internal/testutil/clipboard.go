package testutil

import (
	"sync"

	"fastpin/internal/fastpin"
)

// ScriptedClipboard is a fastpin.ClipboardReader that replays a fixed
// sequence of reads. After the script is exhausted it keeps returning the
// last entry. Safe for concurrent use.
type ScriptedClipboard struct {
	mu    sync.Mutex
	reads []fastpin.Contents
	pos   int
}

// NewScriptedClipboard creates a reader that returns the given contents in
// order.
func NewScriptedClipboard(reads ...fastpin.Contents) *ScriptedClipboard {
	return &ScriptedClipboard{reads: reads}
}

func (c *ScriptedClipboard) Read() (fastpin.Contents, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.reads) == 0 {
		return fastpin.Contents{}, nil
	}
	contents := c.reads[c.pos]
	if c.pos < len(c.reads)-1 {
		c.pos++
	}
	return contents, nil
}

// Set replaces the script with a single entry, so every subsequent read
// returns it.
func (c *ScriptedClipboard) Set(contents fastpin.Contents) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reads = []fastpin.Contents{contents}
	c.pos = 0
}

var _ fastpin.ClipboardReader = (*ScriptedClipboard)(nil)
