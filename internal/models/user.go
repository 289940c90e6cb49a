package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is a position in the fixed staff hierarchy: MEMBER < MODERATOR < ADMIN < OWNER.
type Role string

const (
	RoleMember    Role = "MEMBER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
	RoleOwner     Role = "OWNER"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMember, RoleModerator, RoleAdmin, RoleOwner:
		return true
	}
	return false
}

// Actor is the authenticated caller of an engine operation, as resolved by the identity layer.
type Actor struct {
	ID   string
	Role Role
}

// User is an account. Accounts are owned by the identity layer; the moderation engine
// only reads them for existence checks, identity joins and dashboard counts.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      Role      `gorm:"type:text;not null" json:"role"`
	IsActive  bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate generates a new UUID for the user if the ID is not set yet.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Actor returns the account as an engine caller.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// UserRef is the displayable slice of an account joined into moderation records.
// It maps onto the users table but is never migrated or written through.
type UserRef struct {
	ID       string `gorm:"primaryKey" json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Role     Role   `json:"role,omitempty"`
}

func (UserRef) TableName() string { return "users" }
