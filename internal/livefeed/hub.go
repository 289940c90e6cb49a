package livefeed

import (
	"context"
	"modflow/backend/internal/logging"
	"modflow/backend/internal/models"

	"github.com/rs/zerolog"
)

// Hub keeps the set of connected subscribers and delivers events to them. All
// state is owned by the Run goroutine.
type Hub struct {
	clients map[Client]bool

	RegisterCh   chan Client
	UnregisterCh chan Client
	BroadcastCh  chan Event

	done chan struct{}
	log  zerolog.Logger
}

func NewHub() *Hub {
	return &Hub{
		clients:      make(map[Client]bool),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		BroadcastCh:  make(chan Event, 64),
		done:         make(chan struct{}),
		log:          logging.Component("livefeed"),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.RegisterCh:
			h.clients[c] = true
			h.log.Debug().Str("client", c.ID()).Int("clients", len(h.clients)).Msg("subscriber joined")

		case c := <-h.UnregisterCh:
			if h.clients[c] {
				h.drop(c)
				h.log.Debug().Str("client", c.ID()).Msg("subscriber left")
			}

		case evt := <-h.BroadcastCh:
			for c := range h.clients {
				select {
				case c.SendChannel() <- evt:
				default:
					// Subscriber is not keeping up.
					h.drop(c)
					h.log.Warn().Str("client", c.ID()).Msg("dropping slow subscriber")
				}
			}
		}
	}
}

func (h *Hub) drop(c Client) {
	delete(h.clients, c)
	c.Close()
}

// Register adds c to the feed. It reports false once the hub has stopped.
func (h *Hub) Register(c Client) bool {
	select {
	case h.RegisterCh <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c Client) {
	select {
	case h.UnregisterCh <- c:
	case <-h.done:
	}
}

// Broadcast queues evt for delivery. It gives up when ctx is done.
func (h *Hub) Broadcast(ctx context.Context, evt Event) error {
	select {
	case h.BroadcastCh <- evt:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return nil
	}
}

// Publish delivers a decision to this process's subscribers only. It is used
// when no Redis is configured.
func (h *Hub) Publish(ctx context.Context, entry *models.ModerationLogEntry) error {
	return h.Broadcast(ctx, NewDecision(entry))
}
