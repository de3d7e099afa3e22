package platform

import (
	"SocialPulse/config"
	"SocialPulse/models"
)

// NewAdapter builds the adapter for a platform bound to one user. Unknown
// or non-connectable platforms are rejected here rather than at call time.
func NewAdapter(p models.Platform, cfg *config.Config, userID uint, deps Deps) (Adapter, error) {
	switch p {
	case models.PlatformYouTube:
		return NewYouTubeAdapter(cfg.YouTube, userID, deps)
	case models.PlatformTikTok:
		return NewTikTokAdapter(cfg.TikTok, userID, deps)
	case models.PlatformFacebook:
		return NewFacebookAdapter(cfg.Facebook, userID, deps)
	case models.PlatformLinkedIn:
		return NewLinkedInAdapter(cfg.LinkedIn, userID, deps)
	default:
		return nil, ErrUnsupportedPlatform
	}
}
