package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_INGESTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is a simple Event implementation for ad-hoc events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// DocumentIngested fires after a knowledge base document has been parsed,
// validated and persisted.
func DocumentIngested(filename, category string, chunks int) BaseEvent {
	return BaseEvent{
		Type: "DOCUMENT_INGESTED",
		Data: map[string]interface{}{
			"filename":       filename,
			"category":       category,
			"chunks_created": chunks,
		},
		OccurredAt: time.Now(),
	}
}

// SessionEscalated fires when a troubleshooting session is handed off to
// Apple Support.
func SessionEscalated(sessionID, issue string, failedSteps int) BaseEvent {
	return BaseEvent{
		Type: "SESSION_ESCALATED",
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"issue":        issue,
			"failed_steps": failedSteps,
		},
		OccurredAt: time.Now(),
	}
}
