package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyReachesAllConnections(t *testing.T) {
	h := NewHub()
	first := make(Client, 1)
	second := make(Client, 1)
	h.Subscribe(1, first)
	h.Subscribe(1, second)

	h.NotifyUser(1, Event{Type: EventFriendRequest, Payload: map[string]uint{"from_user_id": 2}})

	for _, client := range []Client{first, second} {
		select {
		case raw := <-client:
			var event Event
			require.NoError(t, json.Unmarshal(raw, &event))
			assert.Equal(t, EventFriendRequest, event.Type)
		default:
			t.Fatal("expected an event on the client channel")
		}
	}
}

func TestNotifyUnknownUserIsNoop(t *testing.T) {
	h := NewHub()

	// Must not panic or block
	h.NotifyUser(42, Event{Type: EventDirectMessage})
}

func TestNotifySkipsFullClient(t *testing.T) {
	h := NewHub()
	full := make(Client) // unbuffered and never read
	h.Subscribe(1, full)

	// A slow client must not block the hub
	h.NotifyUser(1, Event{Type: EventDirectMessage})
}

func TestUnsubscribeClosesClient(t *testing.T) {
	h := NewHub()
	client := make(Client, 1)
	h.Subscribe(1, client)

	h.Unsubscribe(1, client)

	_, open := <-client
	assert.False(t, open, "unsubscribe must close the client channel")

	// Events after unsubscribe go nowhere
	h.NotifyUser(1, Event{Type: EventDirectMessage})
}
