package fastpin

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// Monitor is the capture trigger: it polls the clipboard reader and feeds
// changed content into the capture flow, and forwards hotkey fires to the
// registered quick-pin callback. Both trigger kinds are dispatched serially
// on a single goroutine — no two trigger callbacks run concurrently — and
// the dispatch goroutine never blocks on background work.
// DefaultPollInterval is used when a monitor is built with a non-positive
// interval, e.g. from a config file that omits the [monitor] table.
const DefaultPollInterval = 500 * time.Millisecond

type Monitor struct {
	reader   ClipboardReader
	service  *PinService
	logger   Logger
	interval time.Duration
	maxBytes int64
	hotkey   <-chan struct{}
	onHotkey func()

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	lastHash string
}

// NewMonitor creates a Monitor polling reader every interval. A non-positive
// interval falls back to DefaultPollInterval; a non-positive maxItemBytes
// disables the size limit. hotkey may be nil when no hotkey trigger is
// wired; onHotkey runs on the dispatch goroutine for each fire.
func NewMonitor(reader ClipboardReader, service *PinService, logger Logger, interval time.Duration, maxItemBytes int64, hotkey <-chan struct{}, onHotkey func()) *Monitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Monitor{
		reader:   reader,
		service:  service,
		logger:   logger,
		interval: interval,
		maxBytes: maxItemBytes,
		hotkey:   hotkey,
		onHotkey: onHotkey,
	}
}

// Start launches the dispatch goroutine. Calling Start on a running monitor
// is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.dispatchLoop(ctx, m.done)

	m.logger.Info("clipboard monitor started", "interval", m.interval.String())
}

// Stop shuts the dispatch goroutine down and waits for it to exit. Calling
// Stop on a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	m.logger.Info("clipboard monitor stopped")
}

func (m *Monitor) dispatchLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.checkClipboard()
		case _, ok := <-m.hotkey:
			if !ok {
				return
			}
			if m.onHotkey != nil {
				m.onHotkey()
			}
		}
	}
}

// checkClipboard reads the clipboard and feeds changed content into the
// capture flow. Read failures are logged and swallowed: the passive capture
// path never surfaces errors.
func (m *Monitor) checkClipboard() {
	c, err := m.reader.Read()
	if err != nil {
		m.logger.Debug("clipboard read failed", "error", err)
		return
	}
	if c.Empty() {
		return
	}

	hash := contentHash(c)
	if hash == m.lastHash {
		return
	}
	m.lastHash = hash

	if m.maxBytes > 0 && c.Size() > m.maxBytes {
		m.logger.Debug("skipping oversized clipboard content",
			"size", c.Size(), "max", m.maxBytes)
		return
	}

	m.service.Capture(c)
}

// contentHash fingerprints a clipboard read so unchanged content is not
// re-captured on every poll.
func contentHash(c Contents) string {
	h := sha256.New()
	h.Write([]byte(c.Text))
	h.Write(c.Image)
	for _, p := range c.FilePaths {
		h.Write([]byte(p))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
