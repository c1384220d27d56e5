package identify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecodex/backend/internal/storage/models"
)

func TestHubPublishReachesAllSubscribers(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe()
	b := hub.Subscribe()
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	hub.Publish(models.Observation{LabelRaw: "Hedgehog"})

	assert.Equal(t, "Hedgehog", (<-a).LabelRaw)
	assert.Equal(t, "Hedgehog", (<-b).LabelRaw)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	hub.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open)

	// Unsubscribing twice is harmless.
	hub.Unsubscribe(ch)
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	// Flood well past the buffer; extra messages are dropped.
	for i := 0; i < 100; i++ {
		hub.Publish(models.Observation{LabelRaw: "Fox"})
	}

	drained := 0
	for len(ch) > 0 {
		<-ch
		drained++
	}
	assert.Equal(t, 8, drained)
}
