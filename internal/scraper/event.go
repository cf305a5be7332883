package scraper

import (
	"encoding/json"
	"fmt"
)

// EventKind denotes the type of stream event emitted by the orchestrator.
type EventKind string

// Supported event kinds. A stream carries zero or more record/error events
// followed by exactly one finished event.
const (
	EventRecord   EventKind = "record"
	EventError    EventKind = "error"
	EventFinished EventKind = "finished"
)

// Event is one element of a job's progress feed. Exactly one of Record or Err
// is populated for record/error events; finished events carry neither.
type Event struct {
	Kind   EventKind
	Record *MergedRecord
	Err    string
}

// RecordEvent wraps a completed merged record.
func RecordEvent(rec MergedRecord) Event {
	return Event{Kind: EventRecord, Record: &rec}
}

// ErrorEvent wraps an in-band failure message.
func ErrorEvent(msg string) Event {
	return Event{Kind: EventError, Err: msg}
}

// FinishedEvent is the unconditional end-of-stream marker.
func FinishedEvent() Event {
	return Event{Kind: EventFinished}
}

// Payload renders the wire JSON for the event. Record events serialize the
// merged record fields directly; error and finished events use small fixed
// shapes so consumers can distinguish them without extra framing.
func (e Event) Payload() ([]byte, error) {
	switch e.Kind {
	case EventRecord:
		data, err := json.Marshal(e.Record)
		if err != nil {
			return nil, fmt.Errorf("marshal record event: %w", err)
		}
		return data, nil
	case EventError:
		data, err := json.Marshal(map[string]string{"error": e.Err})
		if err != nil {
			return nil, fmt.Errorf("marshal error event: %w", err)
		}
		return data, nil
	case EventFinished:
		return []byte(`{"status": "finished"}`), nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
}
