package repositories

import (
	"SocialPulse/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(comment *models.Comment) error
	CreateBatch(comments []models.Comment) error
	ListByPost(postID string) ([]models.Comment, error)
}

type commentRepositoryImpl struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{
		db: db,
	}
}

func (r *commentRepositoryImpl) Create(comment *models.Comment) error {
	return r.db.Create(comment).Error
}

func (r *commentRepositoryImpl) CreateBatch(comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	return r.db.Create(&comments).Error
}

func (r *commentRepositoryImpl) ListByPost(postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.
		Where("post_id = ?", postID).
		Order("published_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
