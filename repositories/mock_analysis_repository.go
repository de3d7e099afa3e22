package repositories

import (
	"SocialPulse/models"
	"sync"

	"github.com/google/uuid"
)

// MockAnalysisRepository is an in-memory AnalysisRepository for tests.
type MockAnalysisRepository struct {
	mu       sync.Mutex
	analyses map[string]*models.Analysis
}

func NewMockAnalysisRepository() *MockAnalysisRepository {
	return &MockAnalysisRepository{analyses: make(map[string]*models.Analysis)}
}

func (m *MockAnalysisRepository) Create(analysis *models.Analysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if analysis.ID == "" {
		analysis.ID = uuid.NewString()
	}
	stored := *analysis
	m.analyses[analysis.ID] = &stored
	return nil
}

func (m *MockAnalysisRepository) FindByID(analysisID string, userID uint) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	analysis, ok := m.analyses[analysisID]
	if !ok || analysis.UserID != userID {
		return nil, ErrAnalysisNotFound
	}
	copied := *analysis
	return &copied, nil
}

func (m *MockAnalysisRepository) FindByPostID(postID string, userID uint) (*models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, analysis := range m.analyses {
		if analysis.PostID == postID && analysis.UserID == userID {
			copied := *analysis
			return &copied, nil
		}
	}
	return nil, ErrAnalysisNotFound
}

func (m *MockAnalysisRepository) ListByUser(userID uint, opts AnalysisListOptions) ([]models.Analysis, error) {
	return m.ListAllByUser(userID)
}

func (m *MockAnalysisRepository) ListAllByUser(userID uint) ([]models.Analysis, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Analysis
	for _, analysis := range m.analyses {
		if analysis.UserID == userID {
			out = append(out, *analysis)
		}
	}
	return out, nil
}

func (m *MockAnalysisRepository) Delete(analysisID string, userID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	analysis, ok := m.analyses[analysisID]
	if !ok || analysis.UserID != userID {
		return ErrAnalysisNotFound
	}
	delete(m.analyses, analysisID)
	return nil
}
