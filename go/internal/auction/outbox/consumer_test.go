package outbox

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestSessionSubjectFilter(t *testing.T) {
	check.Equal(t, "auction.events.>", SessionSubjectFilter("auction.events", ""))
	check.Equal(t, "auction.events.s1.>", SessionSubjectFilter("auction.events", "s1"))
}

func TestDecodeEnvelope(t *testing.T) {
	ev, err := NewOutboxEvent("session-1", soldEvent(3))
	assert.NoError(t, err)
	data, err := envelope(ev)
	assert.NoError(t, err)

	env, err := decodeEnvelope(data)
	assert.NoError(t, err)
	check.Equal(t, "evt-1", env.EventID)
	check.Equal(t, "LotSold", env.EventType)
	check.Equal(t, "session-1", env.SessionID)
	check.Equal(t, uint64(3), env.Sequence)
	check.True(t, env.Timestamp.Equal(ev.CreatedAt))
	check.Equal(t, string(ev.Payload), string(env.Payload))

	_, err = decodeEnvelope([]byte("not json"))
	check.Error(t, err)
	_, err = decodeEnvelope([]byte(`{"eventId":"x"}`))
	check.Error(t, err)
}
