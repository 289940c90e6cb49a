// Package livefeed fans committed moderation decisions out to connected reviewers.
// Decisions are published to Redis after commit and every server instance relays
// what it receives to its own websocket subscribers.
package livefeed

import (
	"modflow/backend/internal/models"
	"time"
)

const EventDecision = "decision"

// Event is one message on the live feed.
type Event struct {
	Type   string                     `json:"type"`
	Entry  *models.ModerationLogEntry `json:"entry"`
	SentAt time.Time                  `json:"sent_at"`
}

func NewDecision(entry *models.ModerationLogEntry) Event {
	return Event{Type: EventDecision, Entry: entry, SentAt: time.Now().UTC()}
}
