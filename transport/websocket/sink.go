package websocket

import (
	"github.com/google/uuid"

	"github.com/chalwk/tictactoe-bot/game/sink"
)

// HubSink adapts the hub to the game core's notification contract. Every
// notice is stamped with a fresh message ID before it is queued, so the
// caller gets its render handle back synchronously even though delivery is
// asynchronous.
type HubSink struct {
	hub *Hub
}

// NewHubSink wraps hub as a sink.Notifier.
func NewHubSink(hub *Hub) *HubSink {
	return &HubSink{hub: hub}
}

// Publish implements sink.Notifier.
func (s *HubSink) Publish(n sink.Notice) (string, error) {
	id := uuid.NewString()
	s.hub.BroadcastNotice(n, id)
	return id, nil
}
