package platform

import (
	"SocialPulse/config"
	"SocialPulse/models"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"
)

const linkedinUserInfoURL = "https://api.linkedin.com/v2/userinfo"

var linkedinScopes = []string{"openid", "profile", "email", "w_member_social"}

// LinkedInAdapter uses LinkedIn's OpenID Connect surface: a standard code
// exchange followed by a userinfo call for the member identity.
type LinkedInAdapter struct {
	config *oauth2.Config
	userID uint
	deps   Deps

	// test seam
	userInfoURL string
}

func NewLinkedInAdapter(cfg config.PlatformOAuth, userID uint, deps Deps) (*LinkedInAdapter, error) {
	if !cfg.Complete() {
		return nil, &ConfigError{Platform: models.PlatformLinkedIn}
	}
	return &LinkedInAdapter{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       linkedinScopes,
			Endpoint:     linkedin.Endpoint,
		},
		userID:      userID,
		deps:        deps,
		userInfoURL: linkedinUserInfoURL,
	}, nil
}

func (a *LinkedInAdapter) Platform() models.Platform { return models.PlatformLinkedIn }

func (a *LinkedInAdapter) AuthURL(state string) string {
	return a.config.AuthCodeURL(state)
}

type linkedinUserInfo struct {
	Sub     string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

func (a *LinkedInAdapter) Connect(ctx context.Context, code string) error {
	ctx = a.clientContext(ctx)
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return &ProviderError{Platform: models.PlatformLinkedIn, Op: "token exchange", Message: err.Error()}
	}

	info, err := a.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	identity := Identity{ExternalID: info.Sub, DisplayName: info.Name}
	account := &models.SocialAccount{
		UserID:           a.userID,
		Platform:         models.PlatformLinkedIn,
		ExternalIdentity: identity.Encode(),
		AccessToken:      token.AccessToken,
		RefreshToken:     token.RefreshToken,
		AvatarURL:        info.Picture,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		account.ExpiresAt = &expiry
	}
	_, err = a.deps.Accounts.Upsert(account)
	return err
}

// Disconnect deactivates the local row. LinkedIn tokens are left to expire
// on their own; the API has no self-serve revocation for member tokens.
func (a *LinkedInAdapter) Disconnect(ctx context.Context) error {
	if _, err := findAccount(a.deps, a.userID, models.PlatformLinkedIn); err != nil {
		return err
	}
	return a.deps.Accounts.Deactivate(a.userID, models.PlatformLinkedIn)
}

func (a *LinkedInAdapter) RefreshToken(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformLinkedIn)
	if err != nil {
		return err
	}
	if account.RefreshToken == "" {
		return ErrNoRefreshToken
	}
	return a.deps.refreshGuard().Do(a.userID, models.PlatformLinkedIn, func() error {
		return a.refresh(ctx, false)
	})
}

func (a *LinkedInAdapter) EnsureValidToken(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformLinkedIn)
	if err != nil {
		return err
	}
	if account.AccessToken == "" {
		return ErrMissingAccessToken
	}
	if !tokenNeedsRefresh(account.ExpiresAt, linkedinSafetyMargin) {
		return nil
	}
	if account.RefreshToken == "" {
		return ErrTokenExpired
	}
	return a.deps.refreshGuard().Do(a.userID, models.PlatformLinkedIn, func() error {
		return a.refresh(ctx, true)
	})
}

func (a *LinkedInAdapter) refresh(ctx context.Context, skipIfFresh bool) error {
	account, err := a.deps.Accounts.Find(a.userID, models.PlatformLinkedIn)
	if err != nil {
		return err
	}
	if skipIfFresh && !tokenNeedsRefresh(account.ExpiresAt, linkedinSafetyMargin) {
		return nil
	}
	if account.RefreshToken == "" {
		return ErrTokenExpired
	}

	ctx = a.clientContext(ctx)
	src := a.config.TokenSource(ctx, &oauth2.Token{RefreshToken: account.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return &ProviderError{Platform: models.PlatformLinkedIn, Op: "token refresh", Message: err.Error()}
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

func (a *LinkedInAdapter) fetchUserInfo(ctx context.Context, accessToken string) (*linkedinUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.deps.httpClient().Do(req)
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformLinkedIn, Op: "userinfo", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Platform: models.PlatformLinkedIn, Op: "userinfo", Message: fmt.Sprintf("endpoint returned status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}
	var info linkedinUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, &ProviderError{Platform: models.PlatformLinkedIn, Op: "userinfo", Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if info.Sub == "" {
		return nil, &ProviderError{Platform: models.PlatformLinkedIn, Op: "userinfo", Message: "response contained no subject"}
	}
	return &info, nil
}

func (a *LinkedInAdapter) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.deps.httpClient())
}
