package services

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"context"
	"errors"
	"time"
)

var ErrAccountPlatformMismatch = errors.New("social account does not belong to the requested platform")

type CreatePostInput struct {
	SocialAccountID string          `json:"social_account_id"`
	Platform        models.Platform `json:"platform"`
	PlatformPostID  string          `json:"platform_post_id"`
	PostURL         string          `json:"post_url"`
	Title           string          `json:"title"`
	Content         string          `json:"content"`
	Author          string          `json:"author"`
	PublishedAt     *time.Time      `json:"published_at"`
}

// PostService manages the posts queued for analysis. Posts tied to a
// connected account get their credentials validated up front so ingestion
// does not fail halfway through.
type PostService struct {
	posts  repositories.PostRepository
	social *SocialService
}

func NewPostService(posts repositories.PostRepository, social *SocialService) *PostService {
	return &PostService{posts: posts, social: social}
}

func (s *PostService) Create(ctx context.Context, userID uint, input CreatePostInput) (*models.Post, error) {
	if !input.Platform.Valid() {
		return nil, errors.New("unknown platform")
	}

	post := &models.Post{
		UserID:         userID,
		Platform:       input.Platform,
		PlatformPostID: input.PlatformPostID,
		PostURL:        input.PostURL,
		Title:          input.Title,
		Content:        input.Content,
		Author:         input.Author,
		Status:         models.PostStatusPending,
		PublishedAt:    input.PublishedAt,
	}

	if input.SocialAccountID != "" {
		account, err := s.social.accounts.FindByID(input.SocialAccountID)
		if err != nil {
			return nil, err
		}
		if account.UserID != userID {
			return nil, repositories.ErrAccountNotFound
		}
		if account.Platform != input.Platform {
			return nil, ErrAccountPlatformMismatch
		}
		if err := s.social.EnsureValidToken(ctx, userID, account.Platform); err != nil {
			return nil, err
		}
		post.SocialAccountID = account.ID
	}

	if err := s.posts.Create(post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) Get(userID uint, postID string) (*models.Post, error) {
	return s.posts.FindWithComments(postID, userID)
}

func (s *PostService) List(userID uint, opts repositories.PostListOptions) ([]models.Post, error) {
	return s.posts.ListByUser(userID, opts)
}

func (s *PostService) UpdateStatus(userID uint, postID string, status models.PostStatus) error {
	if !status.Valid() {
		return errors.New("unknown post status")
	}
	if _, err := s.posts.FindByID(postID, userID); err != nil {
		return err
	}
	return s.posts.UpdateStatus(postID, status)
}

func (s *PostService) Delete(userID uint, postID string) error {
	return s.posts.Delete(postID, userID)
}
