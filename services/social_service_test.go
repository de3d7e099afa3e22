package services

import (
	"SocialPulse/auth"
	"SocialPulse/models"
	"SocialPulse/repositories"
	"SocialPulse/services/platform"
	"context"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	platformName models.Platform
	userID       uint
	repo         repositories.SocialAccountRepository
	connects     int
	disconnects  int
}

func (f *fakeAdapter) Platform() models.Platform { return f.platformName }

func (f *fakeAdapter) AuthURL(state string) string {
	return "https://provider.example/authorize?state=" + url.QueryEscape(state)
}

func (f *fakeAdapter) Connect(ctx context.Context, code string) error {
	f.connects++
	_, err := f.repo.Upsert(&models.SocialAccount{
		UserID:           f.userID,
		Platform:         f.platformName,
		ExternalIdentity: platform.Identity{ExternalID: "ext-1", DisplayName: "Fake"}.Encode(),
		AccessToken:      "token-" + code,
	})
	return err
}

func (f *fakeAdapter) Disconnect(ctx context.Context) error {
	f.disconnects++
	return f.repo.Deactivate(f.userID, f.platformName)
}

func (f *fakeAdapter) RefreshToken(ctx context.Context) error { return nil }

func (f *fakeAdapter) EnsureValidToken(ctx context.Context) error { return nil }

type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: make(map[string][]byte)}
}

func (m *memStorage) Upload(ctx context.Context, file io.Reader, key string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return key, nil
}

func (m *memStorage) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *memStorage) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	_, ok := m.objects[key]
	m.mu.Unlock()
	return ok, nil
}

func newTestSocialService(repo repositories.SocialAccountRepository, constructions *int) *SocialService {
	factory := func(p models.Platform, userID uint) (platform.Adapter, error) {
		if constructions != nil {
			*constructions++
		}
		return &fakeAdapter{platformName: p, userID: userID, repo: repo}, nil
	}
	return NewSocialServiceWithFactory(repo, auth.NewMemoryStateStore(), nil, factory, nil)
}

func stateFromAuthURL(t *testing.T, authURL string) string {
	t.Helper()
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)
	return state
}

func TestCallbackCorrelatesUserThroughState(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	svc := newTestSocialService(repo, nil)

	authURL, err := svc.AuthURL(context.Background(), 7, models.PlatformTikTok)
	require.NoError(t, err)
	state := stateFromAuthURL(t, authURL)

	account, err := svc.HandleCallback(context.Background(), models.PlatformTikTok, state, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, models.PlatformTikTok, account.Platform)
	assert.Equal(t, "ext-1", account.ExternalID)
	assert.Equal(t, 1, repo.Count(7, models.PlatformTikTok))
}

func TestCallbackUnknownStateWritesNothing(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	constructions := 0
	svc := newTestSocialService(repo, &constructions)

	_, err := svc.HandleCallback(context.Background(), models.PlatformTikTok, "forged-state", "auth-code")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, constructions)
	assert.Equal(t, 0, repo.Count(7, models.PlatformTikTok))
}

func TestCallbackStateIsSingleUse(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	svc := newTestSocialService(repo, nil)

	authURL, err := svc.AuthURL(context.Background(), 7, models.PlatformTikTok)
	require.NoError(t, err)
	state := stateFromAuthURL(t, authURL)

	_, err = svc.HandleCallback(context.Background(), models.PlatformTikTok, state, "auth-code")
	require.NoError(t, err)

	_, err = svc.HandleCallback(context.Background(), models.PlatformTikTok, state, "auth-code")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCallbackWithoutCode(t *testing.T) {
	svc := newTestSocialService(repositories.NewMockSocialAccountRepository(), nil)

	_, err := svc.HandleCallback(context.Background(), models.PlatformTikTok, "state", "")
	assert.ErrorIs(t, err, ErrMissingCode)
}

func TestDisconnectEvictsCachedAdapter(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	constructions := 0
	svc := newTestSocialService(repo, &constructions)

	_, err := svc.AuthURL(context.Background(), 7, models.PlatformTikTok)
	require.NoError(t, err)
	_, err = svc.AuthURL(context.Background(), 7, models.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, 1, constructions)

	_, err = repo.Upsert(&models.SocialAccount{UserID: 7, Platform: models.PlatformTikTok, AccessToken: "a1"})
	require.NoError(t, err)
	require.NoError(t, svc.Disconnect(context.Background(), 7, models.PlatformTikTok))

	_, err = svc.AuthURL(context.Background(), 7, models.PlatformTikTok)
	require.NoError(t, err)
	assert.Equal(t, 2, constructions)
}

func TestDisconnectRemovesMirroredAvatar(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	store := newMemStorage()
	factory := func(p models.Platform, userID uint) (platform.Adapter, error) {
		return &fakeAdapter{platformName: p, userID: userID, repo: repo}, nil
	}
	svc := NewSocialServiceWithFactory(repo, auth.NewMemoryStateStore(), store, factory, nil)

	_, err := repo.Upsert(&models.SocialAccount{
		UserID:      7,
		Platform:    models.PlatformTikTok,
		AccessToken: "token",
		AvatarURL:   "http://cdn.example/pic.png",
	})
	require.NoError(t, err)

	key := avatarObjectKey(7, models.PlatformTikTok, "http://cdn.example/pic.png")
	_, err = store.Upload(context.Background(), strings.NewReader("img"), key)
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(context.Background(), 7, models.PlatformTikTok))

	exists, err := store.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSetDefaultMarksSingleAccount(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	svc := newTestSocialService(repo, nil)

	account, err := repo.Upsert(&models.SocialAccount{UserID: 7, Platform: models.PlatformYouTube, AccessToken: "a1"})
	require.NoError(t, err)

	require.NoError(t, svc.SetDefault(7, account.ID))
	got, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	// repeat is a no-op, not an error
	require.NoError(t, svc.SetDefault(7, account.ID))
}

func TestSetDefaultRejectsForeignAccount(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	svc := newTestSocialService(repo, nil)

	other, err := repo.Upsert(&models.SocialAccount{UserID: 99, Platform: models.PlatformYouTube, AccessToken: "a1"})
	require.NoError(t, err)

	err = svc.SetDefault(7, other.ID)
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}

func TestUpdateAccountsTogglesDefaults(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	svc := newTestSocialService(repo, nil)

	account, err := repo.Upsert(&models.SocialAccount{UserID: 7, Platform: models.PlatformYouTube, AccessToken: "a1"})
	require.NoError(t, err)

	yes, no := true, false
	require.NoError(t, svc.UpdateAccounts(7, []AccountUpdate{{ID: account.ID, IsDefault: &yes}}))
	got, err := repo.FindByID(account.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	require.NoError(t, svc.UpdateAccounts(7, []AccountUpdate{{ID: account.ID, IsDefault: &no}}))
	got, err = repo.FindByID(account.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	// entries without the flag are untouched
	require.NoError(t, svc.UpdateAccounts(7, []AccountUpdate{{ID: account.ID}}))
}

func TestAccountsOmitTokens(t *testing.T) {
	repo := repositories.NewMockSocialAccountRepository()
	svc := newTestSocialService(repo, nil)

	_, err := repo.Upsert(&models.SocialAccount{
		UserID:           7,
		Platform:         models.PlatformTikTok,
		ExternalIdentity: platform.Identity{ExternalID: "o1", DisplayName: "Creator", OpenID: "o1"}.Encode(),
		AccessToken:      "secret-access",
		RefreshToken:     "secret-refresh",
	})
	require.NoError(t, err)

	accounts, err := svc.Accounts(7)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "o1", accounts[0].ExternalID)
	assert.Equal(t, "Creator", accounts[0].DisplayName)
}
