package repositories

import (
	"SocialPulse/models"
	"errors"

	"gorm.io/gorm"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

// AnalysisListOptions controls sorting and paging for ListByUser.
type AnalysisListOptions struct {
	SortBy    string // "created_at" or "confidence_score"
	SortOrder string // "asc" or "desc"
	Limit     int
	Offset    int
}

type AnalysisRepository interface {
	Create(analysis *models.Analysis) error
	FindByID(analysisID string, userID uint) (*models.Analysis, error)
	FindByPostID(postID string, userID uint) (*models.Analysis, error)
	ListByUser(userID uint, opts AnalysisListOptions) ([]models.Analysis, error)
	ListAllByUser(userID uint) ([]models.Analysis, error)
	Delete(analysisID string, userID uint) error
}

type analysisRepositoryImpl struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepositoryImpl{
		db: db,
	}
}

func (r *analysisRepositoryImpl) Create(analysis *models.Analysis) error {
	return r.db.Create(analysis).Error
}

func (r *analysisRepositoryImpl) FindByID(analysisID string, userID uint) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Where("id = ? AND user_id = ?", analysisID, userID).First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepositoryImpl) FindByPostID(postID string, userID uint) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.Where("post_id = ? AND user_id = ?", postID, userID).First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *analysisRepositoryImpl) ListByUser(userID uint, opts AnalysisListOptions) ([]models.Analysis, error) {
	sortBy := opts.SortBy
	if sortBy != "confidence_score" {
		sortBy = "created_at"
	}
	order := "DESC"
	if opts.SortOrder == "asc" {
		order = "ASC"
	}

	query := r.db.Where("user_id = ?", userID).Order(sortBy + " " + order)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var analyses []models.Analysis
	if err := query.Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

// ListAllByUser feeds the stats aggregation, which needs every row.
func (r *analysisRepositoryImpl) ListAllByUser(userID uint) ([]models.Analysis, error) {
	var analyses []models.Analysis
	if err := r.db.Where("user_id = ?", userID).Find(&analyses).Error; err != nil {
		return nil, err
	}
	return analyses, nil
}

func (r *analysisRepositoryImpl) Delete(analysisID string, userID uint) error {
	return r.db.Where("id = ? AND user_id = ?", analysisID, userID).Delete(&models.Analysis{}).Error
}
