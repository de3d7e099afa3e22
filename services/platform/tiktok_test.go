package platform

import (
	"SocialPulse/config"
	"SocialPulse/models"
	"SocialPulse/repositories"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOAuthConfig = config.PlatformOAuth{
	ClientID:     "client-key",
	ClientSecret: "client-secret",
	RedirectURL:  "http://localhost:8080/api/social/callback/tiktok",
}

func newTikTokTestAdapter(t *testing.T, repo repositories.SocialAccountRepository, tokenURL, userInfoURL string) *TikTokAdapter {
	t.Helper()
	adapter, err := NewTikTokAdapter(testOAuthConfig, 1, NewDeps(repo, time.Second))
	require.NoError(t, err)
	adapter.tokenURL = tokenURL
	adapter.userInfoURL = userInfoURL
	return adapter
}

func tiktokProviderStub(tokenCalls *int64, accessToken, refreshToken, openID string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(tokenCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":%q,"refresh_token":%q,"expires_in":3600,"open_id":%q}`,
			accessToken, refreshToken, openID)
	})
	mux.HandleFunc("/user/info/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":{"user":{"open_id":"o1","display_name":"Test Creator","avatar_url":"http://cdn/avatar.jpg"}}}`)
	})
	return httptest.NewServer(mux)
}

func TestTikTokConnectStoresCredentials(t *testing.T) {
	var tokenCalls int64
	server := tiktokProviderStub(&tokenCalls, "a1", "r1", "o1")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	adapter := newTikTokTestAdapter(t, repo, server.URL+"/oauth/token/", server.URL+"/user/info/")

	require.NoError(t, adapter.Connect(context.Background(), "auth-code"))

	account, err := repo.Find(1, models.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, "a1", account.AccessToken)
	assert.Equal(t, "r1", account.RefreshToken)
	require.NotNil(t, account.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *account.ExpiresAt, 5*time.Second)

	identity := DecodeIdentity(account.ExternalIdentity)
	assert.Equal(t, "o1", identity.OpenID)
	assert.Equal(t, "Test Creator", identity.DisplayName)
}

func TestTikTokConnectTwiceKeepsSingleRow(t *testing.T) {
	var tokenCalls int64
	server := tiktokProviderStub(&tokenCalls, "a1", "r1", "o1")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	adapter := newTikTokTestAdapter(t, repo, server.URL+"/oauth/token/", server.URL+"/user/info/")

	require.NoError(t, adapter.Connect(context.Background(), "code-1"))
	first, err := repo.Find(1, models.PlatformTikTok)
	require.NoError(t, err)

	require.NoError(t, adapter.Connect(context.Background(), "code-2"))
	second, err := repo.Find(1, models.PlatformTikTok)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.Count(1, models.PlatformTikTok))
	assert.Equal(t, first.ID, second.ID)
}

func TestTikTokConnectRequiresOpenID(t *testing.T) {
	var tokenCalls int64
	server := tiktokProviderStub(&tokenCalls, "a1", "r1", "")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	adapter := newTikTokTestAdapter(t, repo, server.URL+"/oauth/token/", server.URL+"/user/info/")

	err := adapter.Connect(context.Background(), "auth-code")
	assert.ErrorIs(t, err, ErrMissingOpenID)
	assert.Equal(t, 0, repo.Count(1, models.PlatformTikTok))
}

func TestTikTokEnsureValidRefreshesExpiredToken(t *testing.T) {
	var tokenCalls int64
	server := tiktokProviderStub(&tokenCalls, "a2", "r2", "o1")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	expired := time.Now().Add(-time.Minute)
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:       1,
		Platform:     models.PlatformTikTok,
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    &expired,
	})
	require.NoError(t, err)

	adapter := newTikTokTestAdapter(t, repo, server.URL+"/oauth/token/", server.URL+"/user/info/")
	require.NoError(t, adapter.EnsureValidToken(context.Background()))

	account, err := repo.Find(1, models.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, "a2", account.AccessToken)
	assert.Equal(t, "r2", account.RefreshToken)
	require.NotNil(t, account.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), *account.ExpiresAt, 5*time.Second)
	assert.EqualValues(t, 1, atomic.LoadInt64(&tokenCalls))
}

func TestTikTokEnsureValidFreshTokenSkipsProvider(t *testing.T) {
	var tokenCalls int64
	server := tiktokProviderStub(&tokenCalls, "a2", "r2", "o1")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	fresh := time.Now().Add(time.Hour)
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:       1,
		Platform:     models.PlatformTikTok,
		AccessToken:  "a1",
		RefreshToken: "r1",
		ExpiresAt:    &fresh,
	})
	require.NoError(t, err)

	adapter := newTikTokTestAdapter(t, repo, server.URL+"/oauth/token/", server.URL+"/user/info/")
	require.NoError(t, adapter.EnsureValidToken(context.Background()))

	account, err := repo.Find(1, models.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, "a1", account.AccessToken)
	assert.EqualValues(t, 0, atomic.LoadInt64(&tokenCalls))
}

func TestTikTokEnsureValidExpiredWithoutRefreshToken(t *testing.T) {
	var tokenCalls int64
	server := tiktokProviderStub(&tokenCalls, "a2", "r2", "o1")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	expired := time.Now().Add(-time.Minute)
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:      1,
		Platform:    models.PlatformTikTok,
		AccessToken: "a1",
		ExpiresAt:   &expired,
	})
	require.NoError(t, err)

	adapter := newTikTokTestAdapter(t, repo, server.URL+"/oauth/token/", server.URL+"/user/info/")
	err = adapter.EnsureValidToken(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.EqualValues(t, 0, atomic.LoadInt64(&tokenCalls))
}

func TestTikTokEnsureValidNotConnected(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	adapter := newTikTokTestAdapter(t, repo, "http://unused", "http://unused")

	err := adapter.EnsureValidToken(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestTikTokRefreshWithoutRefreshToken(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:      1,
		Platform:    models.PlatformTikTok,
		AccessToken: "a1",
	})
	require.NoError(t, err)

	adapter := newTikTokTestAdapter(t, repo, "http://unused", "http://unused")
	err = adapter.RefreshToken(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestTikTokAuthURLUsesClientKey(t *testing.T) {
	adapter := newTikTokTestAdapter(t, repositories.NewMockSocialAccountRepository(), "http://unused", "http://unused")

	authURL := adapter.AuthURL("state-token")
	assert.Contains(t, authURL, "client_key=client-key")
	assert.Contains(t, authURL, "state=state-token")
	assert.Contains(t, authURL, "response_type=code")
	assert.NotContains(t, authURL, "client_id=")
}
