package app

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestPinHandler_Handle(t *testing.T) {
	ts := time.Date(2024, 6, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name    string
		opID    string
		level   slog.Level
		message string
		attrs   []slog.Attr
		want    string
	}{
		{
			name:    "basic info message",
			opID:    "Pin-20240615T143045Z",
			level:   slog.LevelInfo,
			message: "item pinned",
			want:    "2024-06-15T14:30:45Z\tINFO\tPin-20240615T143045Z\titem pinned\n",
		},
		{
			name:    "debug level",
			opID:    "Watch-20240615T143045Z",
			level:   slog.LevelDebug,
			message: "capture skipped",
			want:    "2024-06-15T14:30:45Z\tDEBUG\tWatch-20240615T143045Z\tcapture skipped\n",
		},
		{
			name:    "with record attrs",
			opID:    "Pin-20240615T143045Z",
			level:   slog.LevelInfo,
			message: "item pinned",
			attrs:   []slog.Attr{slog.Int64("item_id", 42), slog.String("type", "text")},
			want:    "2024-06-15T14:30:45Z\tINFO\tPin-20240615T143045Z\titem pinned\titem_id=42\ttype=text\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			h := &pinHandler{w: &buf, opID: tt.opID}

			r := slog.NewRecord(ts, tt.level, tt.message, 0)
			for _, a := range tt.attrs {
				r.AddAttrs(a)
			}

			if err := h.Handle(context.Background(), r); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("Handle() output =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

func TestPinHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := &pinHandler{w: &buf, opID: "op-1"}

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "monitor")}).(*pinHandler)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "started", 0)
	r.AddAttrs(slog.String("interval", "500ms"))

	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	got := buf.String()
	if !strings.Contains(got, "component=monitor") {
		t.Errorf("expected pre-set attr component=monitor, got: %q", got)
	}
	if !strings.Contains(got, "interval=500ms") {
		t.Errorf("expected record attr interval=500ms, got: %q", got)
	}
}

func TestPinHandler_WithAttrs_doesNotMutateOriginal(t *testing.T) {
	var buf bytes.Buffer
	h := &pinHandler{w: &buf, opID: "op-1", attrs: []slog.Attr{slog.String("a", "1")}}

	h2 := h.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*pinHandler)

	if len(h.attrs) != 1 {
		t.Errorf("original handler attrs modified: got %d, want 1", len(h.attrs))
	}
	if len(h2.attrs) != 2 {
		t.Errorf("new handler attrs: got %d, want 2", len(h2.attrs))
	}
}

func TestPinHandler_Enabled(t *testing.T) {
	h := &pinHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if !h.Enabled(context.Background(), level) {
			t.Errorf("Enabled(%v) = false, want true", level)
		}
	}
}

func TestNewLogger(t *testing.T) {
	dir := t.TempDir()

	logger, f, err := newLogger(dir, "test-op")
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer f.Close()

	if logger == nil {
		t.Fatal("newLogger() returned nil logger")
	}
	if f == nil {
		t.Fatal("newLogger() returned nil file")
	}
}
