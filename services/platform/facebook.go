package platform

import (
	"SocialPulse/config"
	"SocialPulse/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	facebookDialogURL = "https://www.facebook.com/v21.0/dialog/oauth"
	facebookGraphURL  = "https://graph.facebook.com/v21.0"
)

var facebookScopes = []string{
	"public_profile",
	"email",
	"pages_manage_posts",
	"pages_read_engagement",
	"publish_video",
}

// FacebookAdapter exchanges the code with a GET against the Graph API and
// stores long-lived tokens without refresh material. Validity is checked by
// probing /me rather than by tracking expiry.
type FacebookAdapter struct {
	cfg    config.PlatformOAuth
	userID uint
	deps   Deps

	// test seam
	graphURL string
}

func NewFacebookAdapter(cfg config.PlatformOAuth, userID uint, deps Deps) (*FacebookAdapter, error) {
	if !cfg.Complete() {
		return nil, &ConfigError{Platform: models.PlatformFacebook}
	}
	return &FacebookAdapter{
		cfg:      cfg,
		userID:   userID,
		deps:     deps,
		graphURL: facebookGraphURL,
	}, nil
}

func (a *FacebookAdapter) Platform() models.Platform { return models.PlatformFacebook }

func (a *FacebookAdapter) AuthURL(state string) string {
	params := url.Values{
		"client_id":     {a.cfg.ClientID},
		"redirect_uri":  {a.cfg.RedirectURL},
		"scope":         {strings.Join(facebookScopes, ",")},
		"response_type": {"code"},
		"state":         {state},
	}
	return facebookDialogURL + "?" + params.Encode()
}

type facebookTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type facebookProfile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

type facebookErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (a *FacebookAdapter) Connect(ctx context.Context, code string) error {
	creds, err := a.exchange(ctx, code)
	if err != nil {
		return err
	}

	profile, err := a.fetchProfile(ctx, creds.AccessToken, "id,name,picture")
	if err != nil {
		return err
	}

	identity := Identity{ExternalID: profile.ID, DisplayName: profile.Name}
	_, err = a.deps.Accounts.Upsert(&models.SocialAccount{
		UserID:           a.userID,
		Platform:         models.PlatformFacebook,
		ExternalIdentity: identity.Encode(),
		AccessToken:      creds.AccessToken,
		AvatarURL:        profile.Picture.Data.URL,
	})
	return err
}

func (a *FacebookAdapter) Disconnect(ctx context.Context) error {
	if _, err := findAccount(a.deps, a.userID, models.PlatformFacebook); err != nil {
		return err
	}
	return a.deps.Accounts.Deactivate(a.userID, models.PlatformFacebook)
}

// RefreshToken always fails: Facebook issues no refresh token for this flow.
func (a *FacebookAdapter) RefreshToken(ctx context.Context) error {
	if _, err := findAccount(a.deps, a.userID, models.PlatformFacebook); err != nil {
		return err
	}
	return ErrNoRefreshToken
}

// EnsureValidToken probes /me with the stored token. Only a Graph rejection
// of the token maps to ErrTokenExpired; transport failures and Graph
// outages say nothing about the token and surface as provider errors.
func (a *FacebookAdapter) EnsureValidToken(ctx context.Context) error {
	account, err := findAccount(a.deps, a.userID, models.PlatformFacebook)
	if err != nil {
		return err
	}
	if account.AccessToken == "" {
		return ErrMissingAccessToken
	}
	if _, err := a.fetchProfile(ctx, account.AccessToken, "id"); err != nil {
		var perr *ProviderError
		if errors.As(err, &perr) {
			switch perr.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
				return ErrTokenExpired
			}
		}
		return err
	}
	return nil
}

func (a *FacebookAdapter) exchange(ctx context.Context, code string) (*facebookTokenResponse, error) {
	endpoint := a.graphURL + "/oauth/access_token?" + url.Values{
		"client_id":     {a.cfg.ClientID},
		"client_secret": {a.cfg.ClientSecret},
		"redirect_uri":  {a.cfg.RedirectURL},
		"code":          {code},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.deps.httpClient().Do(req)
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformFacebook, Op: "token exchange", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.graphError(resp, "token exchange")
	}
	var body facebookTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &ProviderError{Platform: models.PlatformFacebook, Op: "token exchange", Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if body.AccessToken == "" {
		return nil, &ProviderError{Platform: models.PlatformFacebook, Op: "token exchange", Message: "response contained no access token"}
	}
	return &body, nil
}

func (a *FacebookAdapter) fetchProfile(ctx context.Context, accessToken, fields string) (*facebookProfile, error) {
	endpoint := a.graphURL + "/me?" + url.Values{"fields": {fields}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.deps.httpClient().Do(req)
	if err != nil {
		return nil, &ProviderError{Platform: models.PlatformFacebook, Op: "profile lookup", Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, a.graphError(resp, "profile lookup")
	}
	var profile facebookProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, &ProviderError{Platform: models.PlatformFacebook, Op: "profile lookup", Message: fmt.Sprintf("malformed response: %v", err)}
	}
	return &profile, nil
}

func (a *FacebookAdapter) graphError(resp *http.Response, op string) error {
	var body facebookErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error.Message != "" {
		return &ProviderError{Platform: models.PlatformFacebook, Op: op, Message: body.Error.Message, StatusCode: resp.StatusCode}
	}
	return &ProviderError{Platform: models.PlatformFacebook, Op: op, Message: fmt.Sprintf("graph api returned status %d", resp.StatusCode), StatusCode: resp.StatusCode}
}
