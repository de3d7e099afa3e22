package controllers

import (
	"SocialPulse/auth"
	"SocialPulse/models"
	"SocialPulse/repositories"
	"SocialPulse/services"
	"SocialPulse/services/platform"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	platformName models.Platform
	userID       uint
	repo         repositories.SocialAccountRepository
	connectErr   error
}

func (s *stubAdapter) Platform() models.Platform { return s.platformName }
func (s *stubAdapter) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + state
}
func (s *stubAdapter) Connect(ctx context.Context, code string) error {
	if s.connectErr != nil {
		return s.connectErr
	}
	_, err := s.repo.Upsert(&models.SocialAccount{
		UserID:      s.userID,
		Platform:    s.platformName,
		AccessToken: "token",
	})
	return err
}
func (s *stubAdapter) Disconnect(ctx context.Context) error { return nil }

func (s *stubAdapter) RefreshToken(ctx context.Context) error { return nil }

func (s *stubAdapter) EnsureValidToken(ctx context.Context) error { return nil }

func newCallbackFixture(t *testing.T, connectErr error) (*SocialController, auth.StateStore) {
	t.Helper()
	repo := repositories.NewMockSocialAccountRepository()
	states := auth.NewMemoryStateStore()
	factory := func(p models.Platform, userID uint) (platform.Adapter, error) {
		return &stubAdapter{platformName: p, userID: userID, repo: repo, connectErr: connectErr}, nil
	}
	svc := services.NewSocialServiceWithFactory(repo, states, nil, factory, nil)
	return NewSocialController(svc, "http://localhost:3000"), states
}

func runCallback(t *testing.T, controller *SocialController, target string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/social/callback/:platform")
	c.SetParamNames("platform")
	c.SetParamValues("tiktok")
	require.NoError(t, controller.Callback(c))
	return rec
}

func TestCallbackRendersSuccessPayload(t *testing.T) {
	controller, states := newCallbackFixture(t, nil)
	state, err := states.Issue(context.Background(), 7)
	require.NoError(t, err)

	rec := runCallback(t, controller, "/api/social/callback/tiktok?code=auth-code&state="+state)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "oauth_callback")
	assert.Contains(t, rec.Body.String(), "postMessage")
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

// Failures reach the popup as payloads, never as HTTP error statuses; the
// opener window is the only consumer of the response.
func TestCallbackRendersFailurePayloadWithOKStatus(t *testing.T) {
	controller, _ := newCallbackFixture(t, nil)

	rec := runCallback(t, controller, "/api/social/callback/tiktok?code=auth-code&state=forged")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestCallbackProviderDeniedAccess(t *testing.T) {
	controller, _ := newCallbackFixture(t, nil)

	rec := runCallback(t, controller, "/api/social/callback/tiktok?error=access_denied&error_description=user+cancelled")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Contains(t, rec.Body.String(), "user cancelled")
}
