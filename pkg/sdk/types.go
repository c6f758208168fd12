package sdk

import (
	"encoding/json"
	"fmt"
)

// ProjectSummary is one row of the project listing.
type ProjectSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TaskSummary is one row of a project's task listing.
type TaskSummary struct {
	Title string `json:"title"`
	State string `json:"state"`
	ID    int    `json:"id"`
}

// Project is the full view of one project.
type Project struct {
	Name        string        `json:"name"`
	ID          int           `json:"id"`
	Description string        `json:"description"`
	Tasks       []TaskSummary `json:"tasks"`
}

// Task is the full view of one task, activity log and dependencies
// included.
type Task struct {
	Title        string     `json:"title"`
	ID           int        `json:"id"`
	Description  string     `json:"description"`
	State        string     `json:"state"`
	Log          []LogEntry `json:"log"`
	Dependencies []int      `json:"dependencies"`
}

// LogEntry is one activity log record. Exactly one of the Kind
// accessors applies; Comment and State carry the payload for the
// corresponding kinds.
type LogEntry struct {
	Timestamp int64
	Kind      string
	Comment   string
	State     string
}

// Log entry kinds as they appear on the wire.
const (
	EntryOpened         = "Opened"
	EntryComment        = "Comment"
	EntryStateChangedTo = "StateChangedTo"
)

type logEntryDoc struct {
	Timestamp int64           `json:"timestamp"`
	EntryType json.RawMessage `json:"entry_type"`
}

func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var doc logEntryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	e.Timestamp = doc.Timestamp

	var plain string
	if err := json.Unmarshal(doc.EntryType, &plain); err == nil {
		e.Kind = plain
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(doc.EntryType, &tagged); err != nil {
		return fmt.Errorf("unrecognized entry_type: %s", doc.EntryType)
	}
	for tag, payload := range tagged {
		switch tag {
		case EntryComment:
			e.Kind = EntryComment
			return json.Unmarshal(payload, &e.Comment)
		case EntryStateChangedTo:
			e.Kind = EntryStateChangedTo
			return json.Unmarshal(payload, &e.State)
		}
	}
	return fmt.Errorf("unrecognized entry_type: %s", doc.EntryType)
}

func (e LogEntry) MarshalJSON() ([]byte, error) {
	var entryType any
	switch e.Kind {
	case EntryComment:
		entryType = map[string]string{EntryComment: e.Comment}
	case EntryStateChangedTo:
		entryType = map[string]string{EntryStateChangedTo: e.State}
	default:
		entryType = e.Kind
	}
	raw, err := json.Marshal(entryType)
	if err != nil {
		return nil, err
	}
	return json.Marshal(logEntryDoc{Timestamp: e.Timestamp, EntryType: raw})
}

// Ack is the generic acknowledgment envelope returned by mutations.
type Ack struct {
	Status      int    `json:"status"`
	Description string `json:"description"`
}
