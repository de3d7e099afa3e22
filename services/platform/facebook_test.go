package platform

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFacebookTestAdapter(t *testing.T, repo repositories.SocialAccountRepository, graphURL string) *FacebookAdapter {
	t.Helper()
	adapter, err := NewFacebookAdapter(testOAuthConfig, 1, NewDeps(repo, time.Second))
	require.NoError(t, err)
	adapter.graphURL = graphURL
	return adapter
}

func facebookGraphStub(rejectToken string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fb-token","token_type":"bearer","expires_in":5184000}`)
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if rejectToken != "" && r.Header.Get("Authorization") == "Bearer "+rejectToken {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"message":"Error validating access token","type":"OAuthException","code":190}}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"fb-1","name":"Test Page","picture":{"data":{"url":"http://cdn/fb.jpg"}}}`)
	})
	return httptest.NewServer(mux)
}

func TestFacebookConnectUsesGetExchange(t *testing.T) {
	server := facebookGraphStub("")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	adapter := newFacebookTestAdapter(t, repo, server.URL)

	require.NoError(t, adapter.Connect(context.Background(), "auth-code"))

	account, err := repo.Find(1, models.PlatformFacebook)
	require.NoError(t, err)
	assert.Equal(t, "fb-token", account.AccessToken)
	assert.Empty(t, account.RefreshToken)
	assert.Nil(t, account.ExpiresAt)

	identity := DecodeIdentity(account.ExternalIdentity)
	assert.Equal(t, "fb-1", identity.ExternalID)
	assert.Equal(t, "Test Page", identity.DisplayName)
}

func TestFacebookEnsureValidProbesProfile(t *testing.T) {
	server := facebookGraphStub("")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:      1,
		Platform:    models.PlatformFacebook,
		AccessToken: "fb-token",
	})
	require.NoError(t, err)

	adapter := newFacebookTestAdapter(t, repo, server.URL)
	assert.NoError(t, adapter.EnsureValidToken(context.Background()))
}

func TestFacebookEnsureValidRejectedToken(t *testing.T) {
	server := facebookGraphStub("stale-token")
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:      1,
		Platform:    models.PlatformFacebook,
		AccessToken: "stale-token",
	})
	require.NoError(t, err)

	adapter := newFacebookTestAdapter(t, repo, server.URL)
	err = adapter.EnsureValidToken(context.Background())
	assert.ErrorIs(t, err, ErrTokenExpired)
}

// A Graph outage says nothing about the stored token; it must not read as
// an expired token that forces the user through a reconnect.
func TestFacebookEnsureValidGraphOutage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	repo := repositories.NewMockSocialAccountRepository()
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:      1,
		Platform:    models.PlatformFacebook,
		AccessToken: "fb-token",
	})
	require.NoError(t, err)

	adapter := newFacebookTestAdapter(t, repo, server.URL)
	err = adapter.EnsureValidToken(context.Background())
	assert.NotErrorIs(t, err, ErrTokenExpired)
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusInternalServerError, perr.StatusCode)
}

func TestFacebookRefreshUnavailable(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	_, err := repo.Upsert(&models.SocialAccount{
		UserID:      1,
		Platform:    models.PlatformFacebook,
		AccessToken: "fb-token",
	})
	require.NoError(t, err)

	adapter := newFacebookTestAdapter(t, repo, "http://unused")
	err = adapter.RefreshToken(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestFacebookAuthURLCarriesState(t *testing.T) {
	adapter := newFacebookTestAdapter(t, repositories.NewMockSocialAccountRepository(), "http://unused")

	authURL := adapter.AuthURL("state-token")
	assert.Contains(t, authURL, "client_id=client-key")
	assert.Contains(t, authURL, "state=state-token")
	assert.Contains(t, authURL, "response_type=code")
}
