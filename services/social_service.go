package services

import (
	"SocialPulse/auth"
	"SocialPulse/config"
	"SocialPulse/models"
	"SocialPulse/repositories"
	"SocialPulse/services/platform"
	"SocialPulse/storage"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// ErrInvalidState rejects callbacks whose state is unknown or expired.
	ErrInvalidState = errors.New("unknown or expired oauth state")
	// ErrMissingCode rejects callbacks the provider answered without a code.
	ErrMissingCode = errors.New("callback did not include an authorization code")
)

// AdapterFactory builds a platform adapter bound to one user. Injectable so
// tests can count constructions and substitute doubles.
type AdapterFactory func(p models.Platform, userID uint) (platform.Adapter, error)

// PublicAccount is the client-facing view of a connected account. Tokens
// never leave the service layer.
type PublicAccount struct {
	ID          string          `json:"id"`
	Platform    models.Platform `json:"platform"`
	ExternalID  string          `json:"external_id"`
	DisplayName string          `json:"display_name"`
	AvatarURL   string          `json:"avatar_url,omitempty"`
	IsDefault   bool            `json:"is_default"`
	ConnectedAt time.Time       `json:"connected_at"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
}

// SocialService orchestrates the OAuth lifecycle across platforms: it hands
// out auth URLs, correlates callbacks back to users through opaque state
// tokens, and fronts the per-platform adapters.
type SocialService struct {
	accounts repositories.SocialAccountRepository
	states   auth.StateStore
	store    storage.Storage
	factory  AdapterFactory
	client   *http.Client

	mu       sync.Mutex
	adapters map[string]platform.Adapter
}

func NewSocialService(cfg *config.Config, accounts repositories.SocialAccountRepository, states auth.StateStore, store storage.Storage) *SocialService {
	deps := platform.NewDeps(accounts, cfg.ProviderTimeout)
	factory := func(p models.Platform, userID uint) (platform.Adapter, error) {
		return platform.NewAdapter(p, cfg, userID, deps)
	}
	return NewSocialServiceWithFactory(accounts, states, store, factory, deps.Client)
}

// NewSocialServiceWithFactory wires an explicit adapter factory. Production
// code goes through NewSocialService; tests inject counting factories here.
func NewSocialServiceWithFactory(accounts repositories.SocialAccountRepository, states auth.StateStore, store storage.Storage, factory AdapterFactory, client *http.Client) *SocialService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &SocialService{
		accounts: accounts,
		states:   states,
		store:    store,
		factory:  factory,
		client:   client,
		adapters: make(map[string]platform.Adapter),
	}
}

// adapter returns the cached adapter for (user, platform), constructing it
// on first use. Disconnect evicts the entry so a reconnect starts clean.
func (s *SocialService) adapter(p models.Platform, userID uint) (platform.Adapter, error) {
	key := fmt.Sprintf("%d:%s", userID, p)
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.adapters[key]; ok {
		return a, nil
	}
	a, err := s.factory(p, userID)
	if err != nil {
		return nil, err
	}
	s.adapters[key] = a
	return a, nil
}

func (s *SocialService) evict(p models.Platform, userID uint) {
	s.mu.Lock()
	delete(s.adapters, fmt.Sprintf("%d:%s", userID, p))
	s.mu.Unlock()
}

// AuthURL issues a fresh state token for the user and returns the provider
// authorization URL carrying it.
func (s *SocialService) AuthURL(ctx context.Context, userID uint, p models.Platform) (string, error) {
	if !p.Connectable() {
		return "", platform.ErrUnsupportedPlatform
	}
	a, err := s.adapter(p, userID)
	if err != nil {
		return "", err
	}
	state, err := s.states.Issue(ctx, userID)
	if err != nil {
		return "", err
	}
	return a.AuthURL(state), nil
}

// HandleCallback resolves the state token back to a user and runs the
// connect pipeline. An unresolvable state fails before any provider call
// and before any row is written. The returned view carries no token
// material; it is destined for a browser context.
func (s *SocialService) HandleCallback(ctx context.Context, p models.Platform, state, code string) (*PublicAccount, error) {
	if !p.Connectable() {
		return nil, platform.ErrUnsupportedPlatform
	}
	if code == "" {
		return nil, ErrMissingCode
	}
	userID, err := s.states.Resolve(ctx, state)
	if err != nil {
		if errors.Is(err, auth.ErrStateNotFound) {
			CallbackFailuresCounter.WithLabelValues(string(p)).Inc()
			return nil, ErrInvalidState
		}
		return nil, err
	}

	a, err := s.adapter(p, userID)
	if err != nil {
		return nil, err
	}
	if err := a.Connect(ctx, code); err != nil {
		CallbackFailuresCounter.WithLabelValues(string(p)).Inc()
		return nil, err
	}
	ConnectionsCounter.WithLabelValues(string(p)).Inc()

	if err := s.mirrorAvatar(ctx, p, userID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"platform": p,
		}).Warn("avatar mirroring failed")
	}

	account, err := s.accounts.Find(userID, p)
	if err != nil {
		return nil, err
	}
	view := publicView(account)
	return &view, nil
}

// mirrorAvatar copies the provider avatar into our object storage so the
// frontend is not hotlinking provider CDNs. Failures are non-fatal.
func (s *SocialService) mirrorAvatar(ctx context.Context, p models.Platform, userID uint) error {
	if s.store == nil {
		return nil
	}
	account, err := s.accounts.Find(userID, p)
	if err != nil || account.AvatarURL == "" {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, account.AvatarURL, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("avatar fetch returned status %d", resp.StatusCode)
	}

	_, err = s.store.Upload(ctx, resp.Body, avatarObjectKey(userID, p, account.AvatarURL))
	return err
}

// avatarObjectKey is deterministic per (user, platform) so a reconnect
// overwrites the previous object and a disconnect can find it.
func avatarObjectKey(userID uint, p models.Platform, avatarURL string) string {
	ext := ".jpg"
	if u, err := url.Parse(avatarURL); err == nil {
		if e := path.Ext(u.Path); e != "" {
			ext = e
		}
	}
	return fmt.Sprintf("avatars/%d/%s%s", userID, p, ext)
}

// removeAvatar drops the mirrored avatar object after a disconnect.
// Failures only log: the account itself is already deactivated.
func (s *SocialService) removeAvatar(ctx context.Context, p models.Platform, userID uint, avatarURL string) {
	if s.store == nil || avatarURL == "" {
		return
	}
	key := avatarObjectKey(userID, p, avatarURL)
	exists, err := s.store.Exists(ctx, key)
	if err != nil || !exists {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"user_id":  userID,
			"platform": p,
		}).Warn("avatar cleanup failed")
	}
}

// Accounts lists the user's active connections without token material.
func (s *SocialService) Accounts(userID uint) ([]PublicAccount, error) {
	rows, err := s.accounts.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	out := make([]PublicAccount, 0, len(rows))
	for i := range rows {
		out = append(out, publicView(&rows[i]))
	}
	return out, nil
}

func publicView(row *models.SocialAccount) PublicAccount {
	identity := platform.DecodeIdentity(row.ExternalIdentity)
	return PublicAccount{
		ID:          row.ID,
		Platform:    row.Platform,
		ExternalID:  identity.ExternalID,
		DisplayName: identity.DisplayName,
		AvatarURL:   row.AvatarURL,
		IsDefault:   row.IsDefault,
		ConnectedAt: row.CreatedAt,
		ExpiresAt:   row.ExpiresAt,
	}
}

// Disconnect runs the platform disconnect (revocation where supported) and
// drops the cached adapter.
func (s *SocialService) Disconnect(ctx context.Context, userID uint, p models.Platform) error {
	if !p.Connectable() {
		return platform.ErrUnsupportedPlatform
	}
	avatarURL := ""
	if account, err := s.accounts.Find(userID, p); err == nil {
		avatarURL = account.AvatarURL
	}
	a, err := s.adapter(p, userID)
	if err != nil {
		return err
	}
	if err := a.Disconnect(ctx); err != nil {
		return err
	}
	s.evict(p, userID)
	s.removeAvatar(ctx, p, userID, avatarURL)
	return nil
}

// DisconnectAccount deactivates a single account row by id. Ownership is
// enforced; a foreign id reads as not found.
func (s *SocialService) DisconnectAccount(ctx context.Context, userID uint, accountID string) error {
	account, err := s.accounts.FindByID(accountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return repositories.ErrAccountNotFound
	}
	if err := s.accounts.DeactivateByID(userID, accountID); err != nil {
		return err
	}
	s.evict(account.Platform, userID)
	s.removeAvatar(ctx, account.Platform, userID, account.AvatarURL)
	return nil
}

// SetDefault marks one account as the user's default for its platform,
// clearing any previous default first so at most one row carries the flag.
func (s *SocialService) SetDefault(userID uint, accountID string) error {
	account, err := s.accounts.FindByID(accountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return repositories.ErrAccountNotFound
	}
	if err := s.accounts.ClearDefaults(userID, account.Platform); err != nil {
		return err
	}
	return s.accounts.SetDefault(userID, accountID)
}

// AccountUpdate is one entry of a bulk account settings update. A nil
// IsDefault leaves the flag untouched.
type AccountUpdate struct {
	ID        string `json:"id"`
	IsDefault *bool  `json:"is_default"`
}

// UpdateAccounts applies bulk default-flag changes. Promoting an account
// clears the previous default for its platform first, so the at-most-one
// invariant holds after every entry.
func (s *SocialService) UpdateAccounts(userID uint, updates []AccountUpdate) error {
	for _, update := range updates {
		if update.IsDefault == nil {
			continue
		}
		account, err := s.accounts.FindByID(update.ID)
		if err != nil {
			return err
		}
		if account.UserID != userID {
			return repositories.ErrAccountNotFound
		}
		if *update.IsDefault {
			if err := s.accounts.ClearDefaults(userID, account.Platform); err != nil {
				return err
			}
			if err := s.accounts.SetDefault(userID, update.ID); err != nil {
				return err
			}
		} else if err := s.accounts.UnsetDefault(userID, update.ID); err != nil {
			return err
		}
	}
	return nil
}

// RefreshToken forces a refresh regardless of remaining lifetime.
func (s *SocialService) RefreshToken(ctx context.Context, userID uint, p models.Platform) error {
	if !p.Connectable() {
		return platform.ErrUnsupportedPlatform
	}
	a, err := s.adapter(p, userID)
	if err != nil {
		return err
	}
	if err := a.RefreshToken(ctx); err != nil {
		return err
	}
	TokenRefreshCounter.WithLabelValues(string(p)).Inc()
	return nil
}

// EnsureValidToken applies the lazy lifecycle policy for (user, platform).
// Callers invoke it immediately before using a stored credential.
func (s *SocialService) EnsureValidToken(ctx context.Context, userID uint, p models.Platform) error {
	if !p.Connectable() {
		return platform.ErrUnsupportedPlatform
	}
	a, err := s.adapter(p, userID)
	if err != nil {
		return err
	}
	return a.EnsureValidToken(ctx)
}
