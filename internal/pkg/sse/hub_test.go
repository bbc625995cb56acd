package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	hub.Publish("emp-1", Event{ReceiverID: "emp-1", Event: "notification", Data: "hello"})

	select {
	case ev := <-ch:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestHubPublishToUnknownReceiverIsNoop(t *testing.T) {
	hub := NewHub()
	// No subscriber registered; must not panic or block.
	hub.Publish("nobody", Event{ReceiverID: "nobody", Event: "notification"})
	assert.Equal(t, 0, hub.SubscriberCount("nobody"))
}

func TestHubCleanupRemovesSubscriber(t *testing.T) {
	hub := NewHub()

	_, cleanup := hub.Subscribe("emp-1")
	_, cleanup2 := hub.Subscribe("emp-1")
	require.Equal(t, 2, hub.SubscriberCount("emp-1"))

	cleanup()
	assert.Equal(t, 1, hub.SubscriberCount("emp-1"))

	cleanup2()
	assert.Equal(t, 0, hub.SubscriberCount("emp-1"))
}

func TestHubFullChannelDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()

	ch, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	// Channel buffer is 10; overfill it. Publish must drop, not block.
	for i := 0; i < 25; i++ {
		hub.Publish("emp-1", Event{ReceiverID: "emp-1", Event: "notification", Data: i})
	}

	assert.Len(t, ch, 10)
}
