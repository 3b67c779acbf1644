package redisbus

import (
	"strings"
	"testing"

	"github.com/brunolnetto/sql-adventure-sub001/internal/domain/events"
	"github.com/brunolnetto/sql-adventure-sub001/internal/platform/logger"
)

func TestEncodeDecodeEvent(t *testing.T) {
	raw, err := encodeEvent(events.Event{Type: events.TypeCompleted, FilePath: "a.sql", Grade: "B", Score: 7})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(raw), `"occurred_at"`) {
		t.Fatalf("expected timestamp to be filled: %s", raw)
	}
	ev, err := decodeEvent(string(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ev.Type != events.TypeCompleted || ev.FilePath != "a.sql" || ev.OccurredAt.IsZero() {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestEncodeEvent_RequiresType(t *testing.T) {
	if _, err := encodeEvent(events.Event{FilePath: "a.sql"}); err == nil {
		t.Fatalf("expected error for missing type")
	}
	if _, err := decodeEvent(`{"file_path":"a.sql"}`); err == nil {
		t.Fatalf("expected error for untyped payload")
	}
}

func TestNewEventBus_RequiresAddr(t *testing.T) {
	if _, err := NewEventBus(logger.Nop(), Config{}); err == nil {
		t.Fatalf("expected error without address")
	}
}
