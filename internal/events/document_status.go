package events

import "time"

const DocumentLifecycleTopic = "hrm.document.lifecycle.v1"

// DocumentStatusChangedEvent is published when a document is signed or
// rejected so downstream consumers (bots, notification relays) can react.
type DocumentStatusChangedEvent struct {
	EventType  string    `json:"event_type"`
	DocumentID string    `json:"document_id"`
	RequestID  string    `json:"request_id"`
	Status     string    `json:"status"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
