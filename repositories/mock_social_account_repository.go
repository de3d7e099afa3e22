package repositories

import (
	"SocialPulse/models"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockSocialAccountRepository is an in-memory credential store for tests.
type MockSocialAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*models.SocialAccount
}

func NewMockSocialAccountRepository() *MockSocialAccountRepository {
	return &MockSocialAccountRepository{
		accounts: make(map[string]*models.SocialAccount),
	}
}

func (m *MockSocialAccountRepository) Find(userID uint, platform models.Platform) (*models.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID && a.Platform == platform && a.IsActive {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrAccountNotFound
}

func (m *MockSocialAccountRepository) FindByID(accountID string) (*models.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.accounts[accountID]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, ErrAccountNotFound
}

func (m *MockSocialAccountRepository) Upsert(account *models.SocialAccount) (*models.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == account.UserID && a.Platform == account.Platform {
			account.ID = a.ID
			account.CreatedAt = a.CreatedAt
			account.IsDefault = a.IsDefault
			break
		}
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
		account.CreatedAt = time.Now()
	}
	account.IsActive = true
	account.UpdatedAt = time.Now()
	copied := *account
	m.accounts[account.ID] = &copied
	return account, nil
}

func (m *MockSocialAccountRepository) UpdateTokens(account *models.SocialAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[account.ID]
	if !ok {
		return ErrAccountNotFound
	}
	a.AccessToken = account.AccessToken
	a.RefreshToken = account.RefreshToken
	a.ExpiresAt = account.ExpiresAt
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MockSocialAccountRepository) Delete(accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.accounts, accountID)
	return nil
}

func (m *MockSocialAccountRepository) ListByUser(userID uint) ([]models.SocialAccount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SocialAccount
	for _, a := range m.accounts {
		if a.UserID == userID && a.IsActive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *MockSocialAccountRepository) Deactivate(userID uint, platform models.Platform) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := false
	for _, a := range m.accounts {
		if a.UserID == userID && a.Platform == platform && a.IsActive {
			a.IsActive = false
			a.UpdatedAt = time.Now()
			found = true
		}
	}
	if !found {
		return ErrAccountNotFound
	}
	return nil
}

func (m *MockSocialAccountRepository) DeactivateByID(userID uint, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok || a.UserID != userID {
		return ErrAccountNotFound
	}
	a.IsActive = false
	a.UpdatedAt = time.Now()
	return nil
}

func (m *MockSocialAccountRepository) ClearDefaults(userID uint, platform models.Platform) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.UserID == userID && a.Platform == platform {
			a.IsDefault = false
		}
	}
	return nil
}

func (m *MockSocialAccountRepository) SetDefault(userID uint, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok || a.UserID != userID {
		return ErrAccountNotFound
	}
	a.IsDefault = true
	return nil
}

func (m *MockSocialAccountRepository) UnsetDefault(userID uint, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[accountID]
	if !ok || a.UserID != userID {
		return ErrAccountNotFound
	}
	a.IsDefault = false
	return nil
}

// Count reports how many rows exist for a pair, active or not. Test helper.
func (m *MockSocialAccountRepository) Count(userID uint, platform models.Platform) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.accounts {
		if a.UserID == userID && a.Platform == platform {
			n++
		}
	}
	return n
}
