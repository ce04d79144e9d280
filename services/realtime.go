package services

import (
	"sync"
	"time"
)

// Event is one change notification for a watched table. The PC registry
// publishes these for pcs, sessions and detected_ips so admin clients
// see terminal state near-immediately; order views stay on polling.
type Event struct {
	Table   string      `json:"table"`
	Action  string      `json:"action"` // "insert", "update" or "delete"
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// Hub fans change events out to subscribed clients. Slow subscribers
// drop events rather than block a publisher; SSE clients recover by
// re-fetching the table on reconnect.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

var hubInstance *Hub

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// InitHub initializes the shared hub instance
func InitHub() *Hub {
	hubInstance = NewHub()
	return hubInstance
}

// GetHub returns the shared hub instance
func GetHub() *Hub {
	return hubInstance
}

// Subscribe registers a new subscriber and returns its channel together
// with an unsubscribe function. The unsubscribe function is safe to call
// more than once.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish delivers an event to every subscriber without blocking.
func (h *Hub) Publish(table, action string, payload interface{}) {
	evt := Event{Table: table, Action: action, Payload: payload, At: time.Now()}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
