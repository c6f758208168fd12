package tracker

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntryKind discriminates activity log payloads.
type EntryKind string

const (
	EntryOpened         EntryKind = "Opened"
	EntryComment        EntryKind = "Comment"
	EntryStateChangedTo EntryKind = "StateChangedTo"
)

// LogEntry is one record in a task's activity log. The payload is either
// the bare Opened marker, a free-text comment, or the state a transition
// moved the task to.
type LogEntry struct {
	Timestamp time.Time
	Kind      EntryKind
	Comment   string // set when Kind == EntryComment
	State     State  // set when Kind == EntryStateChangedTo
}

// NewOpenedEntry records the creation of a task.
func NewOpenedEntry(at time.Time) LogEntry {
	return LogEntry{Timestamp: at, Kind: EntryOpened}
}

// NewCommentEntry records a free-text comment.
func NewCommentEntry(at time.Time, text string) LogEntry {
	return LogEntry{Timestamp: at, Kind: EntryComment, Comment: text}
}

// NewStateEntry records a transition to the given state.
func NewStateEntry(at time.Time, state State) LogEntry {
	return LogEntry{Timestamp: at, Kind: EntryStateChangedTo, State: state}
}

// logEntryDoc is the wire/persistence shape of a log entry. Timestamps are
// whole seconds since the epoch; the entry payload uses the externally
// tagged form: "Opened", {"Comment":"..."} or {"StateChangedTo":"..."}.
type logEntryDoc struct {
	Timestamp int64           `json:"timestamp"`
	EntryType json.RawMessage `json:"entry_type"`
}

// MarshalJSON implements json.Marshaler.
func (e LogEntry) MarshalJSON() ([]byte, error) {
	payload, err := e.marshalPayload()
	if err != nil {
		return nil, err
	}
	return json.Marshal(logEntryDoc{
		Timestamp: e.Timestamp.Unix(),
		EntryType: payload,
	})
}

func (e LogEntry) marshalPayload() (json.RawMessage, error) {
	switch e.Kind {
	case EntryOpened:
		return json.Marshal(string(EntryOpened))
	case EntryComment:
		return json.Marshal(map[string]string{string(EntryComment): e.Comment})
	case EntryStateChangedTo:
		return json.Marshal(map[string]State{string(EntryStateChangedTo): e.State})
	default:
		return nil, fmt.Errorf("unknown log entry kind: %s", e.Kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var doc logEntryDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	entry := LogEntry{Timestamp: time.Unix(doc.Timestamp, 0).UTC()}

	var tag string
	if err := json.Unmarshal(doc.EntryType, &tag); err == nil {
		if EntryKind(tag) != EntryOpened {
			return fmt.Errorf("unknown log entry payload: %s", tag)
		}
		entry.Kind = EntryOpened
		*e = entry
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(doc.EntryType, &tagged); err != nil {
		return fmt.Errorf("malformed log entry payload: %w", err)
	}

	if raw, ok := tagged[string(EntryComment)]; ok {
		entry.Kind = EntryComment
		if err := json.Unmarshal(raw, &entry.Comment); err != nil {
			return fmt.Errorf("malformed comment payload: %w", err)
		}
		*e = entry
		return nil
	}

	if raw, ok := tagged[string(EntryStateChangedTo)]; ok {
		entry.Kind = EntryStateChangedTo
		if err := json.Unmarshal(raw, &entry.State); err != nil {
			return fmt.Errorf("malformed state payload: %w", err)
		}
		*e = entry
		return nil
	}

	return fmt.Errorf("unknown log entry payload")
}

// ActivityLog is an append-only ordered sequence of log entries. Entries
// are never edited or removed once written; the type exposes no mutation
// besides Append so the invariant is structural.
type ActivityLog struct {
	entries []LogEntry
}

// Append adds an entry to the end of the log.
func (l *ActivityLog) Append(entry LogEntry) {
	l.entries = append(l.entries, entry)
}

// Len returns the number of entries.
func (l *ActivityLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the log in append order.
func (l *ActivityLog) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clone returns an independent copy of the log.
func (l *ActivityLog) Clone() ActivityLog {
	if l.entries == nil {
		return ActivityLog{}
	}
	return ActivityLog{entries: l.Entries()}
}

// Last returns the most recent entry, if any.
func (l *ActivityLog) Last() (LogEntry, bool) {
	if len(l.entries) == 0 {
		return LogEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// LastState returns the state of the most recent StateChangedTo entry,
// if the log contains one.
func (l *ActivityLog) LastState() (State, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Kind == EntryStateChangedTo {
			return l.entries[i].State, true
		}
	}
	return "", false
}

// MarshalJSON implements json.Marshaler. The log serializes as a plain
// array of entries.
func (l ActivityLog) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *ActivityLog) UnmarshalJSON(data []byte) error {
	var entries []LogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	l.entries = entries
	return nil
}
