package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mcdev12/auctionroom/go/internal/auction/events"
)

// OutboxEvent is an engine event addressed to the telemetry stream
type OutboxEvent struct {
	ID        string
	SessionID string
	EventType string
	Sequence  uint64
	Payload   []byte
	CreatedAt time.Time
}

type EventPublisher interface {
	Publish(ctx context.Context, event OutboxEvent) error
}

// NewOutboxEvent serialises an engine event for publishing
func NewOutboxEvent(sessionID string, evt events.Event) (OutboxEvent, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", evt.Kind, err)
	}
	return OutboxEvent{
		ID:        evt.ID,
		SessionID: sessionID,
		EventType: string(evt.Kind),
		Sequence:  evt.Sequence,
		Payload:   payload,
		CreatedAt: evt.OccurredAt,
	}, nil
}
