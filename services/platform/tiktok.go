package platform

import (
	"SocialPulse/config"
	"SocialPulse/models"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	tiktokAuthorizeURL = "https://www.tiktok.com/v2/auth/authorize/"
	tiktokTokenURL     = "https://open.tiktokapis.com/v2/oauth/token/"
	tiktokUserInfoURL  = "https://open.tiktokapis.com/v2/user/info/"
)

var tiktokScopes = []string{"user.info.basic", "video.publish", "video.upload"}

// TikTokAdapter speaks TikTok's OAuth dialect: the client id travels as
// client_key, and the user info endpoint requires the open_id handed out by
// the token exchange.
type TikTokAdapter struct {
	cfg    config.PlatformOAuth
	userID uint
	deps   Deps

	// test seams
	tokenURL    string
	userInfoURL string
}

func NewTikTokAdapter(cfg config.PlatformOAuth, userID uint, deps Deps) (*TikTokAdapter, error) {
	if !cfg.Complete() {
		return nil, &ConfigError{Platform: models.PlatformTikTok}
	}
	return &TikTokAdapter{
		cfg:         cfg,
		userID:      userID,
		deps:        deps,
		tokenURL:    tiktokTokenURL,
		userInfoURL: tiktokUserInfoURL,
	}, nil
}

func (a *TikTokAdapter) Platform() models.Platform { return models.PlatformTikTok }

func (a *TikTokAdapter) AuthURL(state string) string {
	params := url.Values{
		"client_key":    {a.cfg.ClientID},
		"response_type": {"code"},
		"scope":         {strings.Join(tiktokScopes, ",")},
		"redirect_uri":  {a.cfg.RedirectURL},
		"state":         {state},
	}
	return tiktokAuthorizeURL + "?" + params.Encode()
}

type tiktokError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *tiktokError) failed() bool {
	return e != nil && e.Code != "" && e.Code != "ok"
}

type tiktokTokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	OpenID       string       `json:"open_id"`
	Scope        string       `json:"scope"`
	Error        *tiktokError `json:"error"`
}

type tiktokUserResponse struct {
	Data struct {
		User struct {
			OpenID      string `json:"open_id"`
			DisplayName string `json:"display_name"`
			AvatarURL   string `json:"avatar_url"`
		} `json:"user"`
	} `json:"data"`
	Error *tiktokError `json:"error"`
}

func (a *TikTokAdapter) Connect(ctx context.Context, code string) error {
	creds, err := a.exchange(ctx, code)
	if err != nil {
		return err
	}
	if creds.OpenID == "" {
		return ErrMissingOpenID
	}

	user, err := a.fetchUserInfo(ctx, creds.AccessToken, creds.OpenID)
	if err != nil {
		return err
	}

	expiry := time.Now().Add(time.Duration(creds.ExpiresIn) * time.Second)
	identity := Identity{
		ExternalID:  creds.OpenID,
		DisplayName: user.Data.User.DisplayName,
		OpenID:      creds.OpenID,
	}
	_, err = a.deps.Accounts.Upsert(&models.SocialAccount{
		UserID:           a.userID,
		Platform:         models.PlatformTikTok,
		ExternalIdentity: identity.Encode(),
		AccessToken:      creds.AccessToken,
		RefreshToken:     creds.RefreshToken,
		ExpiresAt:        &expiry,
		AvatarURL:        user.Data.User.AvatarURL,
	})
	return err
}

// Disconnect deactivates the local row. TikTok offers no revocation endpoint
// for this grant type, so the provider-side token simply ages out.
func (a *TikTokAdapter) Disconnect(ctx context.Context) error {
	if _, err := findAccount(a.deps, a.userID, models.PlatformTikTok); err != nil {
		return err
	}
	return a.deps.Accounts.Deactivate(a.userID, models.PlatformTikTok)
}

func (a *TikTokAdapter) RefreshToken(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformTikTok)
	if err != nil {
		return err
	}
	if account.RefreshToken == "" {
		return ErrNoRefreshToken
	}
	return a.deps.refreshGuard().Do(a.userID, models.PlatformTikTok, func() error {
		return a.refresh(ctx, false)
	})
}

func (a *TikTokAdapter) EnsureValidToken(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformTikTok)
	if err != nil {
		return err
	}
	if account.AccessToken == "" {
		return ErrMissingAccessToken
	}
	if !tokenNeedsRefresh(account.ExpiresAt, tiktokSafetyMargin) {
		return nil
	}
	if account.RefreshToken == "" {
		return ErrTokenExpired
	}
	return a.deps.refreshGuard().Do(a.userID, models.PlatformTikTok, func() error {
		return a.refresh(ctx, true)
	})
}

func (a *TikTokAdapter) refresh(ctx context.Context, skipIfFresh bool) error {
	account, err := a.deps.Accounts.Find(a.userID, models.PlatformTikTok)
	if err != nil {
		return err
	}
	if skipIfFresh && !tokenNeedsRefresh(account.ExpiresAt, tiktokSafetyMargin) {
		return nil
	}
	if account.RefreshToken == "" {
		return ErrTokenExpired
	}

	form := url.Values{
		"client_key":    {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"grant_type":    {"refresh_token"},
		"refresh_token": {account.RefreshToken},
	}
	creds, err := a.postToken(ctx, form, "token refresh")
	if err != nil {
		return err
	}

	expiry := time.Now().Add(time.Duration(creds.ExpiresIn) * time.Second)
	account.AccessToken = creds.AccessToken
	if creds.RefreshToken != "" {
		account.RefreshToken = creds.RefreshToken
	}
	account.ExpiresAt = &expiry
	return a.deps.Accounts.UpdateTokens(account)
}

func (a *TikTokAdapter) exchange(ctx context.Context, code string) (*tiktokTokenResponse, error) {
	form := url.Values{
		"client_key":    {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {a.cfg.RedirectURL},
	}
	return a.postToken(ctx, form, "token exchange")
}

func (a *TikTokAdapter) postToken(ctx context.Context, form url.Values, op string) (*tiktokTokenResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.deps.httpClient().Do(req)
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformTikTok, Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	var body tiktokTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &ProviderError{Platform: models.PlatformTikTok, Op: op, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if body.Error.failed() {
		return nil, &ProviderError{Platform: models.PlatformTikTok, Op: op, Message: body.Error.Message}
	}
	if resp.StatusCode != http.StatusOK || body.AccessToken == "" {
		return nil, &ProviderError{Platform: models.PlatformTikTok, Op: op, Message: fmt.Sprintf("unexpected response, status %d", resp.StatusCode), StatusCode: resp.StatusCode}
	}
	return &body, nil
}

func (a *TikTokAdapter) fetchUserInfo(ctx context.Context, accessToken, openID string) (*tiktokUserResponse, error) {
	if openID == "" {
		return nil, ErrMissingOpenID
	}
	endpoint := a.userInfoURL + "?" + url.Values{
		"fields":  {"open_id,union_id,avatar_url,display_name"},
		"open_id": {openID},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.deps.httpClient().Do(req)
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformTikTok, Op: "user info", Message: err.Error()}
	}
	defer resp.Body.Close()

	var body tiktokUserResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &ProviderError{Platform: models.PlatformTikTok, Op: "user info", Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if body.Error.failed() {
		return nil, &ProviderError{Platform: models.PlatformTikTok, Op: "user info", Message: body.Error.Message}
	}
	return &body, nil
}
