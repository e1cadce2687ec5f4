package events

import (
	"time"

	"github.com/google/uuid"
)

// Envelope обертка события, публикуемая в exchange
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Source     string    `json:"source"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// NewEnvelope создает обертку с новым идентификатором
func NewEnvelope(source, eventType string, payload any, now time.Time) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		Source:     source,
		OccurredAt: now.UTC(),
		Payload:    payload,
	}
}
