// Package app is the application layer between the CLI and PinService.
// It constructs all dependencies from config and manages their lifecycle.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"fastpin/internal/clip"
	"fastpin/internal/config"
	"fastpin/internal/database"
	"fastpin/internal/encryption"
	"fastpin/internal/fastpin"
)

// App wires the configured store, clipboard monitor, file cache manager,
// and encryptor behind high-level operations for the CLI commands.
// The caller must call Close when done.
type App struct {
	cfg       *config.Config
	store     *database.SQLStore
	service   *fastpin.PinService
	cache     *fastpin.FileCacheManager
	encryptor fastpin.Encryptor
	logger    fastpin.Logger
	logFile   *os.File

	mu          sync.Mutex
	filter      fastpin.Filter
	groupByDate bool
}

// NewApp creates a fully wired App from the given config. operation
// identifies the CLI command being run (e.g. "Pin", "Watch"); it is stamped
// onto every log line together with a timestamp.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	opID := fmt.Sprintf("%s-%s", operation, time.Now().UTC().Format("20060102T150405Z"))
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating store: %w", err)
	}

	adapted := &slogAdapter{l: logger}
	clock := fastpin.RealClock{}
	service := fastpin.NewPinService(store, fastpin.NewPreviewBuffer(), adapted, clock)

	// Background cache operations open a fresh store handle each time. An
	// in-memory database exists only on the foreground connection, so that
	// backend shares the handle instead.
	var opener fastpin.StoreOpener
	if cfg.Database.Type == "memory" {
		opener = func() (fastpin.Store, error) {
			return sharedStore{store}, nil
		}
	} else {
		opener = database.OpenerFromConfig(cfg.Database)
	}
	cache := fastpin.NewFileCacheManager(opener, adapted, clock, cfg.Cache.MaxFileBytes)

	return &App{
		cfg:       cfg,
		store:     store,
		service:   service,
		cache:     cache,
		encryptor: encryption.NewAgeEncryptor(cfg.Export),
		logger:    adapted,
		logFile:   logFile,
	}, nil
}

// Service exposes the underlying PinService for commands that drive the
// capture lifecycle directly.
func (a *App) Service() *fastpin.PinService { return a.service }

// Watch polls the OS clipboard until ctx is cancelled. Every change lands
// in the preview buffer; a signal on hotkey commits the pending preview
// immediately.
func (a *App) Watch(ctx context.Context, hotkey <-chan struct{}) error {
	reader, err := clip.NewSystemClipboard()
	if err != nil {
		return fmt.Errorf("opening clipboard: %w", err)
	}

	interval := time.Duration(a.cfg.Monitor.IntervalMS) * time.Millisecond
	onHotkey := func() {
		item, err := a.service.CommitPreview(ctx, nil)
		if err != nil {
			a.logger.Warn("hotkey commit failed", "error", err)
			return
		}
		a.logger.Info("hotkey pinned", "item_id", item.ID)
	}

	monitor := fastpin.NewMonitor(reader, a.service, a.logger, interval, a.cfg.Monitor.MaxItemBytes, hotkey, onHotkey)
	monitor.Start(ctx)
	defer monitor.Stop()

	<-ctx.Done()
	return nil
}

// PinText persists a text item directly, without the preview stage.
func (a *App) PinText(ctx context.Context, text string, tags []string) (*fastpin.PinnedItem, error) {
	snap, err := fastpin.Classify(fastpin.Contents{Text: text}, time.Now())
	if err != nil {
		return nil, err
	}
	snap.Source = fastpin.SourceManual
	return a.pinSnapshot(ctx, snap, tags)
}

// PinImage reads an image file, canonicalizes it, and persists it as an
// image item.
func (a *App) PinImage(ctx context.Context, path string, tags []string) (*fastpin.PinnedItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &fastpin.FileAccessError{Path: path, Err: err}
	}
	snap, err := fastpin.Classify(fastpin.Contents{Image: raw}, time.Now())
	if err != nil {
		return nil, err
	}
	snap.Source = fastpin.SourceManual
	return a.pinSnapshot(ctx, snap, tags)
}

// PinFile persists a file reference item.
func (a *App) PinFile(ctx context.Context, path string, tags []string) (*fastpin.PinnedItem, error) {
	item, err := a.service.PinFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return item, a.tagItem(ctx, item, tags)
}

func (a *App) pinSnapshot(ctx context.Context, snap *fastpin.Snapshot, tags []string) (*fastpin.PinnedItem, error) {
	item, err := a.service.QuickPin(ctx, snap)
	if err != nil {
		return nil, err
	}
	return item, a.tagItem(ctx, item, tags)
}

func (a *App) tagItem(ctx context.Context, item *fastpin.PinnedItem, tags []string) error {
	for _, name := range tags {
		if err := a.service.AddTag(ctx, item.ID, name); err != nil {
			return err
		}
	}
	return nil
}

// ListItems returns items matching the filter, newest first.
func (a *App) ListItems(ctx context.Context, f fastpin.Filter) ([]*fastpin.PinnedItem, error) {
	return a.service.Items(ctx, f)
}

// GroupedItems returns items matching the filter partitioned into date
// buckets labeled relative to the current time, in the configured language.
func (a *App) GroupedItems(ctx context.Context, f fastpin.Filter) ([]*fastpin.ItemGroup, error) {
	return a.service.GroupedItems(ctx, f, labelSetFor(a.cfg.Language))
}

// labelSets maps BCP 47 language tags (lowercased) to bucket label sets.
// English is the only table shipped so far.
var labelSets = map[string]fastpin.LabelSet{
	"en-us": fastpin.EnglishLabels(),
	"en-gb": fastpin.EnglishLabels(),
	"en":    fastpin.EnglishLabels(),
}

// labelSetFor resolves the configured language tag to a label set,
// falling back to English for unrecognized tags.
func labelSetFor(language string) fastpin.LabelSet {
	if set, ok := labelSets[strings.ToLower(language)]; ok {
		return set
	}
	return fastpin.EnglishLabels()
}

// SetFilters replaces the held filter state used by Items.
func (a *App) SetFilters(f fastpin.Filter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.filter = f
}

// SetGroupByDate toggles date-bucket grouping for Items.
func (a *App) SetGroupByDate(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.groupByDate = v
}

// Items runs a query with the held filter state. When grouping is off, the
// result is a single unlabeled group carrying the flat, newest-first list.
func (a *App) Items(ctx context.Context) ([]*fastpin.ItemGroup, error) {
	a.mu.Lock()
	filter, grouped := a.filter, a.groupByDate
	a.mu.Unlock()

	if grouped {
		return a.GroupedItems(ctx, filter)
	}

	items, err := a.ListItems(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return []*fastpin.ItemGroup{{Items: items}}, nil
}

// DeleteItem removes an item from the history.
func (a *App) DeleteItem(ctx context.Context, id int64) error {
	return a.service.DeleteItem(ctx, id)
}

// AddTag links the named tag to an item, creating the tag on first use.
func (a *App) AddTag(ctx context.Context, itemID int64, name string) error {
	return a.service.AddTag(ctx, itemID, name)
}

// RemoveTag unlinks the named tag from an item.
func (a *App) RemoveTag(ctx context.Context, itemID int64, name string) error {
	return a.service.RemoveTag(ctx, itemID, name)
}

// ListTags returns all tags sorted by name.
func (a *App) ListTags(ctx context.Context) ([]*fastpin.Tag, error) {
	return a.service.ListTags(ctx)
}

// DeleteTag removes the named tag everywhere. Unknown names are a no-op.
func (a *App) DeleteTag(ctx context.Context, name string) error {
	tag, err := a.service.ListTags(ctx)
	if err != nil {
		return err
	}
	for _, t := range tag {
		if t.Name == name {
			return a.service.DeleteTag(ctx, t.ID)
		}
	}
	return nil
}

// ToggleFileCache enables or disables the embedded file cache for a file
// item. Enabling reads the source file on a background goroutine; the
// returned channel reports the outcome.
func (a *App) ToggleFileCache(ctx context.Context, itemID int64, enable bool) <-chan error {
	if enable {
		return a.cache.Enable(ctx, itemID)
	}
	done := make(chan error, 1)
	done <- a.cache.Disable(ctx, itemID)
	return done
}

// Close closes the store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// sharedStore wraps a store handle whose lifetime is owned by the App, so
// per-operation Close calls don't tear down the shared connection.
type sharedStore struct {
	fastpin.Store
}

func (sharedStore) Close() error { return nil }
