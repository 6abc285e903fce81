package fastpin_test

import (
	"context"
	"testing"
	"time"

	"fastpin/internal/fastpin"
	"fastpin/internal/testutil"
)

// These tests run the capture lifecycle against the real SQL store.

func TestLifecycle_MonitorToStore(t *testing.T) {
	store := testutil.NewTestStore(t)
	clock := testutil.FixedClock()
	svc := fastpin.NewPinService(store, fastpin.NewPreviewBuffer(), fastpin.NewNopLogger(), clock)

	reader := testutil.NewScriptedClipboard(
		fastpin.Contents{Text: "copied once", SourceApp: "browser"},
	)
	m := fastpin.NewMonitor(reader, svc, fastpin.NewNopLogger(), 5*time.Millisecond, 0, nil, nil)
	m.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for !svc.Preview().Previewing() {
		if time.Now().After(deadline) {
			t.Fatal("monitor never captured the clipboard")
		}
		time.Sleep(5 * time.Millisecond)
	}
	m.Stop()

	if err := svc.Preview().AddTag("research"); err != nil {
		t.Fatalf("AddTag() error = %v", err)
	}

	item, err := svc.CommitPreview(context.Background(), nil)
	if err != nil {
		t.Fatalf("CommitPreview() error = %v", err)
	}

	got, err := store.FindItem(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("FindItem() error = %v", err)
	}
	if got == nil {
		t.Fatal("committed item not found in store")
	}
	if got.TextContent != "copied once" {
		t.Errorf("TextContent = %q, want %q", got.TextContent, "copied once")
	}
	if got.SourceApplication != "browser" {
		t.Errorf("SourceApplication = %q, want %q", got.SourceApplication, "browser")
	}
	if !got.CreatedAt.Equal(clock.Now()) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, clock.Now())
	}
	if len(got.Tags) != 1 || got.Tags[0].Name != "research" {
		t.Errorf("tags = %v, want [research]", got.Tags)
	}
}

func TestLifecycle_GroupingFollowsClock(t *testing.T) {
	store := testutil.NewTestStore(t)
	clock := testutil.NewStubClock(time.Date(2024, 1, 15, 23, 50, 0, 0, time.UTC))
	svc := fastpin.NewPinService(store, fastpin.NewPreviewBuffer(), fastpin.NewNopLogger(), clock)

	svc.Capture(fastpin.Contents{Text: "late night copy"})
	if _, err := svc.CommitPreview(context.Background(), nil); err != nil {
		t.Fatalf("CommitPreview() error = %v", err)
	}

	groups, err := svc.GroupedItems(context.Background(), fastpin.Filter{}, fastpin.EnglishLabels())
	if err != nil {
		t.Fatalf("GroupedItems() error = %v", err)
	}
	if len(groups) != 1 || groups[0].Label != "Today" {
		t.Fatalf("groups before midnight = %v, want single Today group", groups)
	}

	// Cross midnight. The same stored row lands in a different bucket on
	// the next query, no data mutation involved.
	clock.Advance(15 * time.Minute)

	groups, err = svc.GroupedItems(context.Background(), fastpin.Filter{}, fastpin.EnglishLabels())
	if err != nil {
		t.Fatalf("GroupedItems() error = %v", err)
	}
	if len(groups) != 1 || groups[0].Label != "Yesterday" {
		t.Errorf("groups after midnight = %v, want single Yesterday group", groups)
	}
}
