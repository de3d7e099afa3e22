package repositories

import (
	"SocialPulse/models"
	"errors"

	"gorm.io/gorm"
)

var ErrPostNotFound = errors.New("post not found")

// PostListOptions filters ListByUser; zero values mean "no filter".
type PostListOptions struct {
	Platform models.Platform
	Status   models.PostStatus
	Limit    int
	Offset   int
}

type PostRepository interface {
	Create(post *models.Post) error
	FindByID(postID string, userID uint) (*models.Post, error)
	FindWithComments(postID string, userID uint) (*models.Post, error)
	ListByUser(userID uint, opts PostListOptions) ([]models.Post, error)
	Update(post *models.Post) error
	UpdateStatus(postID string, status models.PostStatus) error
	Delete(postID string, userID uint) error
}

type postRepositoryImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepositoryImpl{
		db: db,
	}
}

func (r *postRepositoryImpl) Create(post *models.Post) error {
	return r.db.Create(post).Error
}

func (r *postRepositoryImpl) FindByID(postID string, userID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Where("id = ? AND user_id = ?", postID, userID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepositoryImpl) FindWithComments(postID string, userID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Preload("Comments").
		Where("id = ? AND user_id = ?", postID, userID).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepositoryImpl) ListByUser(userID uint, opts PostListOptions) ([]models.Post, error) {
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")

	if opts.Platform != "" {
		query = query.Where("platform = ?", opts.Platform)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	var posts []models.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepositoryImpl) Update(post *models.Post) error {
	return r.db.Save(post).Error
}

func (r *postRepositoryImpl) UpdateStatus(postID string, status models.PostStatus) error {
	result := r.db.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepositoryImpl) Delete(postID string, userID uint) error {
	return r.db.Where("id = ? AND user_id = ?", postID, userID).Delete(&models.Post{}).Error
}
