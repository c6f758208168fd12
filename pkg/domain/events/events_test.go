package events

import (
	"testing"
	"time"
)

func TestCalculateHashDeterministic(t *testing.T) {
	event := &Event{
		ID:        "evt-123",
		Type:      TypeTaskStateChanged,
		ProjectID: 0,
		TaskID:    2,
		Timestamp: time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC),
		Metadata: map[string]any{
			"from": "Todo",
			"to":   "InProgress",
		},
	}

	first := event.CalculateHash()
	second := event.CalculateHash()
	if first != second {
		t.Errorf("hash not deterministic: %s != %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(first))
	}
}

func TestCalculateHashSensitivity(t *testing.T) {
	base := func() *Event {
		return &Event{
			ID:        "evt-1",
			Type:      TypeProjectCreated,
			Timestamp: time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC),
			Metadata:  map[string]any{"name": "website"},
		}
	}

	ref := base().CalculateHash()

	altered := base()
	altered.Metadata["name"] = "backend"
	if altered.CalculateHash() == ref {
		t.Error("metadata change did not change the hash")
	}

	chained := base()
	chained.PrevHash = ref
	if chained.CalculateHash() == ref {
		t.Error("prev hash is not part of the hash input")
	}
}

func TestCalculateHashMetadataOrderIndependent(t *testing.T) {
	a := &Event{
		ID:        "evt-1",
		Type:      TypeTaskDependencyChanged,
		Timestamp: time.Unix(1724650000, 0).UTC(),
		Metadata:  map[string]any{"action": "Add", "dependency": 3},
	}
	b := &Event{
		ID:        "evt-1",
		Type:      TypeTaskDependencyChanged,
		Timestamp: time.Unix(1724650000, 0).UTC(),
		Metadata:  map[string]any{"dependency": 3, "action": "Add"},
	}

	if a.CalculateHash() != b.CalculateHash() {
		t.Error("hash depends on metadata map iteration order")
	}
}
