package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
	PlatformTwitter   Platform = "twitter"
	PlatformURL       Platform = "url"
)

// ConnectablePlatforms are the platforms backed by an OAuth adapter.
// Instagram, Twitter and plain URLs are valid post sources but cannot be
// connected as accounts.
var ConnectablePlatforms = []Platform{
	PlatformYouTube,
	PlatformTikTok,
	PlatformFacebook,
	PlatformLinkedIn,
}

func (p Platform) Connectable() bool {
	for _, c := range ConnectablePlatforms {
		if p == c {
			return true
		}
	}
	return false
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformYouTube, PlatformTikTok, PlatformFacebook, PlatformLinkedIn,
		PlatformInstagram, PlatformTwitter, PlatformURL:
		return true
	}
	return false
}

// SocialAccount holds one connected provider identity per (user, platform).
// ExternalIdentity is an opaque JSON blob because providers disagree on the
// shape of their identity payloads; AvatarURL is duplicated out of it for
// cheap reads.
type SocialAccount struct {
	ID               string     `json:"id" gorm:"primaryKey;size:36"`
	UserID           uint       `json:"user_id" gorm:"not null;index:idx_social_accounts_user_platform"`
	Platform         Platform   `json:"platform" gorm:"not null;size:32;index:idx_social_accounts_user_platform"`
	ExternalIdentity string     `json:"-" gorm:"column:external_identity;size:2048"`
	AccessToken      string     `json:"-" gorm:"not null;size:2048"`
	RefreshToken     string     `json:"-" gorm:"size:2048"`
	ExpiresAt        *time.Time `json:"expires_at"`
	AvatarURL        string     `json:"avatar_url" gorm:"size:1024"`
	IsDefault        bool       `json:"is_default" gorm:"not null;default:false"`
	IsActive         bool       `json:"is_active" gorm:"not null;default:true"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (a *SocialAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
