package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Severity grades a warning.
type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// UserWarning is a disciplinary record attached to an account.
// IsActive is flipped by the external expiry job, never by the engine.
type UserWarning struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"not null;index" json:"user_id"`
	ModeratorID string     `gorm:"not null;index" json:"moderator_id"`
	Reason      string     `gorm:"type:text;not null" json:"reason"`
	Severity    Severity   `gorm:"type:text;not null" json:"severity"`
	IsActive    bool       `gorm:"not null;index" json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`

	User      *UserRef `gorm:"foreignKey:UserID;references:ID;-:migration" json:"user,omitempty"`
	Moderator *UserRef `gorm:"foreignKey:ModeratorID;references:ID;-:migration" json:"moderator,omitempty"`
}

func (w *UserWarning) BeforeCreate(tx *gorm.DB) (err error) {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return
}

// Notification is a message addressed to an account. Delivery and read state
// belong to the notification service.
type Notification struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"not null;index" json:"user_id"`
	Title     string         `gorm:"not null" json:"title"`
	Message   string         `gorm:"type:text;not null" json:"message"`
	Type      string         `gorm:"not null" json:"type"`
	Data      datatypes.JSON `json:"data"`
	CreatedAt time.Time      `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	return
}
