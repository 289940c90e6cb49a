package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Log actions written by the engine. Callers may supply other tags for single report updates.
const (
	ActionReview  = "REVIEW"
	ActionWarn    = "WARN"
	ActionResolve = "RESOLVE"
	ActionDismiss = "DISMISS"
)

// TargetRef identifies what a log entry acted on: a single id, or the ordered
// ids of a bulk batch. In the database a single target is stored as the plain id
// and a batch as a Postgres text-array literal. The column alone does not say
// which form it holds; ModerationLogEntry decodes batches from its target type.
type TargetRef struct {
	ID  string
	IDs []string
}

// SingleTarget refers to one user, post or comment.
func SingleTarget(id string) TargetRef {
	return TargetRef{ID: id}
}

// BulkTarget refers to a batch of reports, in the given order.
func BulkTarget(ids []string) TargetRef {
	return TargetRef{IDs: append([]string{}, ids...)}
}

// IsBulk reports whether the reference holds a list of ids.
func (t TargetRef) IsBulk() bool {
	return t.IDs != nil
}

// List returns every id the reference covers.
func (t TargetRef) List() []string {
	if t.IsBulk() {
		return append([]string{}, t.IDs...)
	}
	if t.ID == "" {
		return nil
	}
	return []string{t.ID}
}

func (t TargetRef) String() string {
	if t.IsBulk() {
		return strings.Join(t.IDs, ",")
	}
	return t.ID
}

func (TargetRef) GormDataType() string {
	return "text"
}

func (t TargetRef) Value() (driver.Value, error) {
	if t.IsBulk() {
		return pq.StringArray(t.IDs).Value()
	}
	return t.ID, nil
}

func (t *TargetRef) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case nil:
		*t = TargetRef{}
		return nil
	default:
		return fmt.Errorf("target ref: unsupported column type %T", src)
	}

	*t = TargetRef{ID: raw}
	return nil
}

func parseBulkTarget(raw string) (TargetRef, error) {
	var ids pq.StringArray
	if err := ids.Scan(raw); err != nil {
		return TargetRef{}, fmt.Errorf("target ref: %w", err)
	}
	return BulkTarget(ids), nil
}

func (t TargetRef) MarshalJSON() ([]byte, error) {
	if t.IsBulk() {
		return json.Marshal(t.IDs)
	}
	return json.Marshal(t.ID)
}

func (t *TargetRef) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*t = TargetRef{}
		return nil
	}

	var ids []string
	if err := json.Unmarshal(b, &ids); err == nil {
		*t = BulkTarget(ids)
		return nil
	}

	var id string
	if err := json.Unmarshal(b, &id); err != nil {
		return fmt.Errorf("target ref must be a string or a list of strings: %w", err)
	}
	*t = SingleTarget(id)
	return nil
}

// ModerationLogEntry is the immutable audit record of one moderation decision.
// Entries are only ever inserted, inside the transaction of the decision they record.
type ModerationLogEntry struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	ModeratorID string     `gorm:"not null;index" json:"moderator_id"`
	TargetType  TargetType `gorm:"type:text;not null;index" json:"target_type"`
	Target      TargetRef  `gorm:"column:target_id;not null" json:"target_id"`
	Action      string     `gorm:"not null;index" json:"action"`
	Reason      string     `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`

	Moderator *UserRef `gorm:"foreignKey:ModeratorID;references:ID;-:migration" json:"moderator,omitempty"`
}

func (ModerationLogEntry) TableName() string { return "moderation_logs" }

func (e *ModerationLogEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

// AfterFind decodes the stored target of a BULK entry into its id list.
func (e *ModerationLogEntry) AfterFind(tx *gorm.DB) error {
	if e.TargetType != TargetBulk || e.Target.IsBulk() {
		return nil
	}
	target, err := parseBulkTarget(e.Target.ID)
	if err != nil {
		return err
	}
	e.Target = target
	return nil
}
