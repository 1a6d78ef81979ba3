package parquet

import (
	"path/filepath"
	"testing"
	"time"
)

func TestWriteEventsWritesAllRows(t *testing.T) {
	rows := []EventRow{
		{Sequence: 1, Type: "intent.revoked", Attributes: map[string]string{"intent_hash": "ab"}, RecordedAt: time.Unix(0, 0)},
		{Sequence: 2, Type: "mesh.step", Attributes: map[string]string{"dest": "cd"}, RecordedAt: time.Unix(100, 0)},
	}
	path := filepath.Join(t.TempDir(), "events.parquet")
	n, err := WriteEvents(path, rows)
	if err != nil {
		t.Fatalf("write events: %v", err)
	}
	if n != len(rows) {
		t.Fatalf("wrote %d rows, want %d", n, len(rows))
	}
}
