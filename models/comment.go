package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID                string     `json:"id" gorm:"primaryKey;size:36"`
	PostID            string     `json:"post_id" gorm:"not null;size:36;index"`
	PlatformCommentID string     `json:"platform_comment_id" gorm:"size:255"`
	AuthorName        string     `json:"author_name" gorm:"size:255"`
	AuthorID          string     `json:"author_id" gorm:"size:255"`
	Content           string     `json:"content" gorm:"size:4096"`
	LikesCount        int        `json:"likes_count"`
	RepliesCount      int        `json:"replies_count"`
	ParentCommentID   string     `json:"parent_comment_id,omitempty" gorm:"size:36"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
