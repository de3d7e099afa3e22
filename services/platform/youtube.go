package platform

import (
	"SocialPulse/config"
	"SocialPulse/models"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const youtubeRevokeURL = "https://oauth2.googleapis.com/revoke"

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/youtube.force-ssl",
}

// YouTubeAdapter connects YouTube channels through Google's OAuth endpoints
// and resolves identity via the channels.list API.
type YouTubeAdapter struct {
	config *oauth2.Config
	userID uint
	deps   Deps

	// test seams
	apiEndpoint string
	revokeURL   string
}

func NewYouTubeAdapter(cfg config.PlatformOAuth, userID uint, deps Deps) (*YouTubeAdapter, error) {
	if !cfg.Complete() {
		return nil, &ConfigError{Platform: models.PlatformYouTube}
	}
	return &YouTubeAdapter{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       youtubeScopes,
			Endpoint:     google.Endpoint,
		},
		userID:    userID,
		deps:      deps,
		revokeURL: youtubeRevokeURL,
	}, nil
}

func (a *YouTubeAdapter) Platform() models.Platform { return models.PlatformYouTube }

// AuthURL requests offline access with a forced consent screen so Google
// returns a refresh token on every connect, not just the first one.
func (a *YouTubeAdapter) AuthURL(state string) string {
	return a.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

func (a *YouTubeAdapter) Connect(ctx context.Context, code string) error {
	ctx = a.clientContext(ctx)
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return &ProviderError{Platform: models.PlatformYouTube, Op: "token exchange", Message: err.Error()}
	}

	identity, avatarURL, err := a.fetchChannel(ctx, a.config.TokenSource(ctx, token))
	if err != nil {
		return err
	}

	account := &models.SocialAccount{
		UserID:           a.userID,
		Platform:         models.PlatformYouTube,
		ExternalIdentity: identity.Encode(),
		AccessToken:      token.AccessToken,
		RefreshToken:     token.RefreshToken,
		AvatarURL:        avatarURL,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		account.ExpiresAt = &expiry
	}
	_, err = a.deps.Accounts.Upsert(account)
	return err
}

// Disconnect revokes the token at Google before deactivating the local row.
// Revocation failures are logged and swallowed; the row is deactivated
// regardless so the account disappears from the user's view.
func (a *YouTubeAdapter) Disconnect(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformYouTube)
	if err != nil {
		return err
	}
	if account.AccessToken != "" {
		if err := a.revoke(ctx, account.AccessToken); err != nil {
			logrus.WithError(err).WithField("user_id", a.userID).Warn("youtube token revocation failed")
		}
	}
	return a.deps.Accounts.Deactivate(a.userID, models.PlatformYouTube)
}

func (a *YouTubeAdapter) revoke(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := a.deps.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

func (a *YouTubeAdapter) RefreshToken(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformYouTube)
	if err != nil {
		return err
	}
	if account.RefreshToken == "" {
		return ErrNoRefreshToken
	}
	return a.deps.refreshGuard().Do(a.userID, models.PlatformYouTube, func() error {
		return a.refresh(ctx, false)
	})
}

func (a *YouTubeAdapter) EnsureValidToken(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformYouTube)
	if err != nil {
		return err
	}
	if account.AccessToken == "" {
		return ErrMissingAccessToken
	}
	if !tokenNeedsRefresh(account.ExpiresAt, youtubeSafetyMargin) {
		return nil
	}
	if account.RefreshToken == "" {
		return ErrTokenExpired
	}
	return a.deps.refreshGuard().Do(a.userID, models.PlatformYouTube, func() error {
		return a.refresh(ctx, true)
	})
}

// refresh re-reads the row inside the guard so a request that lost the race
// observes the winner's tokens instead of refreshing again.
func (a *YouTubeAdapter) refresh(ctx context.Context, skipIfFresh bool) error {
	account, err := a.deps.Accounts.Find(a.userID, models.PlatformYouTube)
	if err != nil {
		return err
	}
	if skipIfFresh && !tokenNeedsRefresh(account.ExpiresAt, youtubeSafetyMargin) {
		return nil
	}
	if account.RefreshToken == "" {
		return ErrTokenExpired
	}

	ctx = a.clientContext(ctx)
	src := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return &ProviderError{Platform: models.PlatformYouTube, Op: "token refresh", Message: err.Error()}
	}

	account.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		account.RefreshToken = token.RefreshToken
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		account.ExpiresAt = &expiry
	}
	return a.deps.Accounts.UpdateTokens(account)
}

func (a *YouTubeAdapter) fetchChannel(ctx context.Context, src oauth2.TokenSource) (Identity, string, error) {
	opts := []option.ClientOption{option.WithTokenSource(src)}
	if a.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(a.apiEndpoint))
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return Identity{}, "", fmt.Errorf("failed to create youtube client: %w", err)
	}
	resp, err := svc.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return Identity{}, "", &ProviderError{Platform: models.PlatformYouTube, Op: "channel lookup", Message: err.Error()}
	}
	if len(resp.Items) == 0 {
		return Identity{}, "", &ProviderError{Platform: models.PlatformYouTube, Op: "channel lookup", Message: "no channel found for this account"}
	}

	channel := resp.Items[0]
	identity := Identity{ExternalID: channel.Id}
	var avatarURL string
	if channel.Snippet != nil {
		identity.DisplayName = channel.Snippet.Title
		if channel.Snippet.Thumbnails != nil && channel.Snippet.Thumbnails.Default != nil {
			avatarURL = channel.Snippet.Thumbnails.Default.Url
		}
	}
	return identity, avatarURL, nil
}

// clientContext routes oauth2's internal HTTP calls through the shared
// timeout-bound client.
func (a *YouTubeAdapter) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.deps.httpClient())
}
