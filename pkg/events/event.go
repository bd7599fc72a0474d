package events

import "time"

// Event type codes published on the bus.
const (
	TypeDocumentDeleted   = "DOCUMENT_DELETED"
	TypeDocumentIndexed   = "DOCUMENT_INDEXED"
	TypeDocumentIndexFail = "DOCUMENT_INDEX_FAILED"
	TypeNoteCreated       = "NOTE_CREATED"
	TypeNoteUpdated       = "NOTE_UPDATED"
)

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used across services.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
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
