package events

import "time"

const RequestLifecycleTopic = "hrm.request.lifecycle.v1"

type RequestCreatedEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	RequestType string    `json:"request_type"`
	CreatorID   string    `json:"creator_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}
