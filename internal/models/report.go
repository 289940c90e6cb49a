package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TargetType names the kind of thing a report or a log entry points at.
type TargetType string

const (
	TargetUser    TargetType = "USER"
	TargetPost    TargetType = "POST"
	TargetComment TargetType = "COMMENT"
	// TargetBulk is only used by log entries that record a batch of reports.
	TargetBulk TargetType = "BULK"
)

// Reportable reports whether t can be the subject of a user report.
func (t TargetType) Reportable() bool {
	switch t {
	case TargetUser, TargetPost, TargetComment:
		return true
	}
	return false
}

// Valid reports whether t is a known target type, BULK included.
func (t TargetType) Valid() bool {
	return t == TargetBulk || t.Reportable()
}

// ReportStatus is the review state of a report.
type ReportStatus string

const (
	ReportPending   ReportStatus = "PENDING"
	ReportResolved  ReportStatus = "RESOLVED"
	ReportDismissed ReportStatus = "DISMISSED"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	return s == ReportPending || s.Terminal()
}

// Terminal reports whether s ends the review of a report.
func (s ReportStatus) Terminal() bool {
	return s == ReportResolved || s == ReportDismissed
}

// Report is a member's flag against a user, post or comment.
// Reports are created outside the engine and are never deleted.
type Report struct {
	ID         string       `gorm:"primaryKey" json:"id"`
	ReporterID string       `gorm:"not null;index" json:"reporter_id"`
	TargetType TargetType   `gorm:"type:text;not null" json:"target_type"`
	TargetID   string       `gorm:"not null" json:"target_id"`
	Reason     string       `gorm:"type:text;not null" json:"reason"`
	Status     ReportStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt  time.Time    `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Reporter *UserRef `gorm:"foreignKey:ReporterID;references:ID;-:migration" json:"reporter,omitempty"`
}

// BeforeCreate generates a new UUID for the report and opens it as PENDING.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = ReportPending
	}
	return
}
