package repositories

import (
	"SocialPulse/models"
	"sync"

	"github.com/google/uuid"
)

// MockPostRepository is an in-memory PostRepository for tests.
type MockPostRepository struct {
	mu    sync.Mutex
	posts map[string]*models.Post
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{posts: make(map[string]*models.Post)}
}

func (m *MockPostRepository) Create(post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *MockPostRepository) FindByID(postID string, userID uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok || post.UserID != userID {
		return nil, ErrPostNotFound
	}
	copied := *post
	return &copied, nil
}

func (m *MockPostRepository) FindWithComments(postID string, userID uint) (*models.Post, error) {
	return m.FindByID(postID, userID)
}

func (m *MockPostRepository) ListByUser(userID uint, opts PostListOptions) ([]models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Post
	for _, post := range m.posts {
		if post.UserID != userID {
			continue
		}
		if opts.Platform != "" && post.Platform != opts.Platform {
			continue
		}
		if opts.Status != "" && post.Status != opts.Status {
			continue
		}
		out = append(out, *post)
	}
	return out, nil
}

func (m *MockPostRepository) Update(post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[post.ID]; !ok {
		return ErrPostNotFound
	}
	stored := *post
	m.posts[post.ID] = &stored
	return nil
}

func (m *MockPostRepository) UpdateStatus(postID string, status models.PostStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok {
		return ErrPostNotFound
	}
	post.Status = status
	return nil
}

func (m *MockPostRepository) Delete(postID string, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[postID]
	if !ok || post.UserID != userID {
		return ErrPostNotFound
	}
	delete(m.posts, postID)
	return nil
}
