package sse

import (
	"sync"
)

// Message is a payload fanned out to stream subscribers
type Message struct {
	Type string
	Data []byte
}

// Hub is an in-memory pub/sub hub keyed by topic
type Hub struct {
	mu      sync.Mutex
	clients map[string]map[chan Message]struct{}
	buffer  int
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[chan Message]struct{}),
		buffer:  16,
	}
}

// Subscribe registers a listener on the given topic.
// The returned func removes the listener and closes its channel; it is safe to call twice.
func (h *Hub) Subscribe(topic string) (<-chan Message, func()) {
	ch := make(chan Message, h.buffer)

	h.mu.Lock()
	if h.clients[topic] == nil {
		h.clients[topic] = make(map[chan Message]struct{})
	}
	h.clients[topic][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.clients[topic], ch)
			if len(h.clients[topic]) == 0 {
				delete(h.clients, topic)
			}
			close(ch)
			h.mu.Unlock()
		})
	}

	return ch, unsub
}

// Publish delivers msg to every subscriber of topic.
// Non-blocking: a subscriber whose buffer is full misses the message.
func (h *Hub) Publish(topic string, msg Message) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for ch := range h.clients[topic] {
		select {
		case ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers reports how many listeners a topic has
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[topic])
}
