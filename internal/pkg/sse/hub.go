package sse

import (
	"sync"
)

// Event is a live-delivery envelope addressed to one receiver. Delivery is
// best-effort; the persisted notification record is the durability
// guarantee.
type Event struct {
	ReceiverID string
	Event      string
	Data       interface{}
}

// Hub tracks live-delivery channels per receiver. A receiver may hold zero
// or many channels; publishing to a receiver with none is a silent no-op.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a channel for the receiver and returns it with a
// cleanup function.
func (h *Hub) Subscribe(receiverID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, 10)

	if h.subscribers[receiverID] == nil {
		h.subscribers[receiverID] = make(map[chan Event]struct{})
	}
	h.subscribers[receiverID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[receiverID], ch)
		close(ch)
		if len(h.subscribers[receiverID]) == 0 {
			delete(h.subscribers, receiverID)
		}
	}

	return ch, cleanup
}

// Publish sends an event to every channel of the receiver. Full channels
// are skipped; a slow consumer never blocks the publisher.
func (h *Hub) Publish(receiverID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[receiverID]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
			}
		}
	}
}

// SubscriberCount returns the number of active channels for a receiver.
func (h *Hub) SubscriberCount(receiverID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[receiverID]; ok {
		return len(subs)
	}
	return 0
}
