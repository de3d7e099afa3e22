package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostStatus string

const (
	PostStatusPending    PostStatus = "pending"
	PostStatusProcessing PostStatus = "processing"
	PostStatusCompleted  PostStatus = "completed"
	PostStatusFailed     PostStatus = "failed"
)

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusPending, PostStatusProcessing, PostStatusCompleted, PostStatusFailed:
		return true
	}
	return false
}

// Post is an ingested piece of content, either pulled from a connected
// platform or submitted as a raw URL.
type Post struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	UserID          uint       `json:"user_id" gorm:"not null;index"`
	SocialAccountID string     `json:"social_account_id,omitempty" gorm:"size:36"`
	Platform        Platform   `json:"platform" gorm:"not null;size:32;index"`
	PlatformPostID  string     `json:"platform_post_id,omitempty" gorm:"size:255"`
	PostURL         string     `json:"post_url" gorm:"not null;size:2048"`
	Title           string     `json:"title" gorm:"size:512"`
	Content         string     `json:"content" gorm:"size:8192"`
	Author          string     `json:"author" gorm:"size:255"`
	Status          PostStatus `json:"status" gorm:"not null;size:32;default:'pending';index"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Comments        []Comment  `json:"comments,omitempty" gorm:"foreignKey:PostID"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
