package models

import (
	"encoding/json"
	"time"
)

// DocumentEvent is one entry of a document's history, recorded from the
// event stream. Payload holds the event as it was published.
type DocumentEvent struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	EventType  string          `json:"event_type"`
	ActorID    string          `json:"actor_id,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}
