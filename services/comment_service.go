package services

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"time"
)

type CreateCommentInput struct {
	PlatformCommentID string     `json:"platform_comment_id"`
	AuthorName        string     `json:"author_name"`
	AuthorID          string     `json:"author_id"`
	Content           string     `json:"content"`
	LikesCount        int        `json:"likes_count"`
	RepliesCount      int        `json:"replies_count"`
	ParentCommentID   string     `json:"parent_comment_id"`
	PublishedAt       *time.Time `json:"published_at"`
}

// CommentService attaches ingested platform comments to posts the user owns.
type CommentService struct {
	comments repositories.CommentRepository
	posts    repositories.PostRepository
}

func NewCommentService(comments repositories.CommentRepository, posts repositories.PostRepository) *CommentService {
	return &CommentService{comments: comments, posts: posts}
}

func (s *CommentService) ownedPost(userID uint, postID string) error {
	_, err := s.posts.FindByID(postID, userID)
	return err
}

func (s *CommentService) AddBatch(userID uint, postID string, inputs []CreateCommentInput) ([]models.Comment, error) {
	if err := s.ownedPost(userID, postID); err != nil {
		return nil, err
	}

	comments := make([]models.Comment, 0, len(inputs))
	for _, in := range inputs {
		comments = append(comments, models.Comment{
			PostID:            postID,
			PlatformCommentID: in.PlatformCommentID,
			AuthorName:        in.AuthorName,
			AuthorID:          in.AuthorID,
			Content:           in.Content,
			LikesCount:        in.LikesCount,
			RepliesCount:      in.RepliesCount,
			ParentCommentID:   in.ParentCommentID,
			PublishedAt:       in.PublishedAt,
		})
	}
	if err := s.comments.CreateBatch(comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) List(userID uint, postID string) ([]models.Comment, error) {
	if err := s.ownedPost(userID, postID); err != nil {
		return nil, err
	}
	return s.comments.ListByPost(postID)
}
