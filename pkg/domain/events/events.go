// Package events defines the mutation events the store emits after each
// committed write. Events feed the append-only audit log and the live
// websocket feed; they are observability output, never an input to the
// registry itself.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Event types, one per committed mutation, plus the reload marker emitted
// when the data file is rewritten externally.
const (
	TypeProjectCreated        = "project.created"
	TypeProjectRenamed        = "project.renamed"
	TypeProjectDescribed      = "project.described"
	TypeTaskCreated           = "task.created"
	TypeTaskTitleChanged      = "task.title_changed"
	TypeTaskDescribed         = "task.described"
	TypeTaskStateChanged      = "task.state_changed"
	TypeTaskDependencyChanged = "task.dependency_changed"
	TypeTaskCommented         = "task.commented"
	TypeRegistryReloaded      = "registry.reloaded"
)

// Event is one committed mutation. PrevHash/Hash chain events in append
// order so the audit log is tamper-evident.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	ProjectID int            `json:"project_id"`
	TaskID    int            `json:"task_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	Hash      string         `json:"hash,omitempty"`
}

// CalculateHash generates a deterministic SHA256 hash of the event.
func (e *Event) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Type))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON produces a deterministic JSON representation of the
// metadata map.
func canonicalJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		ordered = append(ordered, keyJSON...)
		ordered = append(ordered, ':')
		ordered = append(ordered, valJSON...)
	}
	ordered = append(ordered, '}')
	return string(ordered)
}

// Handler consumes published events.
type Handler func(event *Event) error

// Publisher fans events out to in-process subscribers.
type Publisher interface {
	Publish(event *Event) error
	Subscribe(handler Handler)
}
