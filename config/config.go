package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// PlatformOAuth carries one provider's OAuth application credentials.
// Adapters refuse to construct when their block is incomplete; an empty
// block simply means the platform was not configured for this deployment.
type PlatformOAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (p PlatformOAuth) Complete() bool {
	return p.ClientID != "" && p.ClientSecret != "" && p.RedirectURL != ""
}

// Partial reports a block with some but not all fields set: the platform
// looks enabled yet every adapter construction would fail.
func (p PlatformOAuth) Partial() bool {
	configured := p.ClientID != "" || p.ClientSecret != "" || p.RedirectURL != ""
	return configured && !p.Complete()
}

type Config struct {
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret   string
	FrontendURL string

	// ProviderTimeout bounds every HTTP call to a social platform so a slow
	// provider cannot hang a request indefinitely.
	ProviderTimeout time.Duration

	YouTube  PlatformOAuth
	TikTok   PlatformOAuth
	Facebook PlatformOAuth
	LinkedIn PlatformOAuth

	AvatarStorage string // "local" or "s3"
	AvatarBucket  string
	AvatarPath    string
}

func LoadConfig() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	timeoutSecs, _ := strconv.Atoi(getEnv("PROVIDER_TIMEOUT_SECONDS", "10"))

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     dbPort,
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		ProviderTimeout: time.Duration(timeoutSecs) * time.Second,

		YouTube: PlatformOAuth{
			ClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
			ClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("YOUTUBE_REDIRECT_URI"),
		},
		TikTok: PlatformOAuth{
			ClientID:     os.Getenv("TIKTOK_CLIENT_KEY"),
			ClientSecret: os.Getenv("TIKTOK_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("TIKTOK_CALLBACK_URL"),
		},
		Facebook: PlatformOAuth{
			ClientID:     os.Getenv("FACEBOOK_APP_ID"),
			ClientSecret: os.Getenv("FACEBOOK_APP_SECRET"),
			RedirectURL:  os.Getenv("FACEBOOK_CALLBACK_URL"),
		},
		LinkedIn: PlatformOAuth{
			ClientID:     os.Getenv("LINKEDIN_CLIENT_ID"),
			ClientSecret: os.Getenv("LINKEDIN_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("LINKEDIN_CALLBACK_URL"),
		},

		AvatarStorage: getEnv("AVATAR_STORAGE", "local"),
		AvatarBucket:  os.Getenv("AVATAR_BUCKET"),
		AvatarPath:    getEnv("AVATAR_PATH", "./avatars"),
	}
}

// ValidatePlatforms rejects partially configured OAuth blocks so a broken
// deployment fails at startup instead of per request. Fully empty blocks
// pass: they mean the platform is simply not offered.
func (c *Config) ValidatePlatforms() error {
	blocks := []struct {
		name  string
		block PlatformOAuth
	}{
		{"youtube", c.YouTube},
		{"tiktok", c.TikTok},
		{"facebook", c.Facebook},
		{"linkedin", c.LinkedIn},
	}
	var broken []string
	for _, b := range blocks {
		if b.block.Partial() {
			broken = append(broken, b.name)
		}
	}
	if len(broken) > 0 {
		return fmt.Errorf("incomplete oauth configuration for: %s", strings.Join(broken, ", "))
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
