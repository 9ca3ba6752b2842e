package outbox

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogPublisher writes events to the process log, used when no NATS server is configured
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event OutboxEvent) error {
	log.Debug().
		Str("session_id", event.SessionID).
		Str("event_type", event.EventType).
		Str("event_id", event.ID).
		Uint64("sequence", event.Sequence).
		RawJSON("payload", event.Payload).
		Msg("auction event")
	return nil
}
