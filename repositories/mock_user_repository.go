package repositories

import (
	"SocialPulse/models"
	"errors"
	"sync"
)

// MockUserRepository is an in-memory UserRepository for tests. Password
// hashing normally happens in a gorm hook, so Create hashes here too.
type MockUserRepository struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{nextID: 1, users: make(map[uint]*models.User)}
}

func (m *MockUserRepository) Create(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := user.BeforeSave(nil); err != nil {
		return err
	}
	user.ID = m.nextID
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) FindByID(userID uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return nil, errors.New("user not found")
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) FindByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *MockUserRepository) Update(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return errors.New("user not found")
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}
