package platform

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// Safety margins: how long before actual expiry a proactive refresh fires.
const (
	youtubeSafetyMargin  = time.Minute
	tiktokSafetyMargin   = 5 * time.Minute
	linkedinSafetyMargin = 5 * time.Minute
)

const defaultProviderTimeout = 10 * time.Second

var (
	// ErrNotConnected means no active account exists for this (user, platform).
	ErrNotConnected = errors.New("no connected account for this platform")
	// ErrTokenExpired means the token lapsed and there is no refresh path;
	// the user has to reconnect.
	ErrTokenExpired = errors.New("access token expired and cannot be refreshed")
	// ErrNoRefreshToken is returned by an explicit refresh on an account that
	// never received a refresh token.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrMissingAccessToken means the stored account is unusable.
	ErrMissingAccessToken = errors.New("no access token available")
	// ErrMissingOpenID: TikTok identity lookups require the open_id returned
	// by the token exchange; it is not independently discoverable.
	ErrMissingOpenID = errors.New("open_id is required for user info request")
	// ErrUnsupportedPlatform rejects platforms with no OAuth integration.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// ConfigError marks a platform whose OAuth application block is incomplete.
// It is raised at adapter construction, never at request time.
type ConfigError struct {
	Platform models.Platform
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s oauth configuration is incomplete", e.Platform)
}

// ProviderError wraps an error payload returned by a social platform.
// StatusCode is zero when the call never produced an HTTP response.
type ProviderError struct {
	Platform   models.Platform
	Op         string
	Message    string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Platform, e.Op, e.Message)
}

// Adapter is the capability interface every provider implements.
//
// AuthURL is pure construction. Connect runs the full exchange pipeline:
// code-for-token exchange, identity fetch, normalization, upsert into the
// credential store. EnsureValidToken applies the lifecycle policy lazily,
// immediately before a credential is used; there is no background refresh.
type Adapter interface {
	Platform() models.Platform
	AuthURL(state string) string
	Connect(ctx context.Context, code string) error
	Disconnect(ctx context.Context) error
	RefreshToken(ctx context.Context) error
	EnsureValidToken(ctx context.Context) error
}

// Deps bundles the collaborators shared by every adapter.
type Deps struct {
	Accounts repositories.SocialAccountRepository
	Client   *http.Client
	Refresh  *RefreshGuard
}

func NewDeps(accounts repositories.SocialAccountRepository, timeout time.Duration) Deps {
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	return Deps{
		Accounts: accounts,
		Client:   &http.Client{Timeout: timeout},
		Refresh:  NewRefreshGuard(),
	}
}

func (d Deps) httpClient() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return &http.Client{Timeout: defaultProviderTimeout}
}

func (d Deps) refreshGuard() *RefreshGuard {
	if d.Refresh != nil {
		return d.Refresh
	}
	return NewRefreshGuard()
}

// RefreshGuard serializes token refreshes per (user, platform). Two requests
// refreshing the same account share one provider call and one database
// write, so a rotated refresh token cannot be silently discarded by a
// losing writer.
type RefreshGuard struct {
	group singleflight.Group
}

func NewRefreshGuard() *RefreshGuard {
	return &RefreshGuard{}
}

func (g *RefreshGuard) Do(userID uint, p models.Platform, fn func() error) error {
	key := fmt.Sprintf("%d:%s", userID, p)
	_, err, _ := g.group.Do(key, func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// findAccount maps a missing row to ErrNotConnected so callers can
// distinguish "never connected" from store failures.
func findAccount(deps Deps, userID uint, p models.Platform) (*models.SocialAccount, error) {
	account, err := deps.Accounts.Find(userID, p)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrNotConnected
		}
		return nil, err
	}
	return account, nil
}

// tokenNeedsRefresh implements the shared expiry check: a nil expiry is
// optimistically valid (the provider call itself will reveal invalidity).
func tokenNeedsRefresh(expiresAt *time.Time, margin time.Duration) bool {
	if expiresAt == nil {
		return false
	}
	return !time.Now().Before(expiresAt.Add(-margin))
}
