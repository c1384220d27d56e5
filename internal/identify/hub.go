package identify

import (
	"sync"

	"github.com/ecodex/backend/internal/storage/models"
)

// Hub broadcasts newly persisted observations to websocket
// subscribers. Slow subscribers lose messages rather than block the
// pipeline.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan models.Observation]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan models.Observation]struct{}),
	}
}

func (h *Hub) Subscribe() chan models.Observation {
	ch := make(chan models.Observation, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch
}

func (h *Hub) Unsubscribe(ch chan models.Observation) {
	h.mu.Lock()
	if _, ok := h.subscribers[ch]; ok {
		delete(h.subscribers, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(obs models.Observation) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- obs:
		default:
		}
	}
}
