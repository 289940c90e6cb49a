package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostPublished is the status of a post visible to the community.
const PostPublished = "PUBLISHED"

// Post is community content. Owned by the content service; the engine only counts it.
type Post struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	AuthorID  string    `gorm:"not null;index" json:"author_id"`
	Title     string    `json:"title"`
	Status    string    `gorm:"not null;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}

// Comment is a reply to a post. Deleted comments are kept with IsDeleted set.
type Comment struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	PostID    string    `gorm:"not null;index" json:"post_id"`
	AuthorID  string    `gorm:"not null;index" json:"author_id"`
	Body      string    `gorm:"type:text" json:"body"`
	IsDeleted bool      `gorm:"not null" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

// All lists every model the engine migrates, accounts first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&Comment{},
		&Report{},
		&UserWarning{},
		&Notification{},
		&ModerationLogEntry{},
	}
}
