package services

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"SocialPulse/utils"
	"errors"

	"github.com/sirupsen/logrus"
)

var (
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{userRepo: userRepo}
}

func (s *AuthService) Register(name, email, password string) (*models.User, error) {
	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: password,
	}
	if err := s.userRepo.Create(user); err != nil {
		logrus.Error("Error registering user: ", err)
		return nil, errors.New("error registering user")
	}
	return user, nil
}

// UpdateProfileInput carries the mutable profile fields; nil leaves a field
// unchanged. Email and password changes are not part of this call.
type UpdateProfileInput struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

func (s *AuthService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}
	if err := s.userRepo.Update(user); err != nil {
		logrus.Error("Error updating profile: ", err)
		return nil, errors.New("error updating profile")
	}
	return user, nil
}

func (s *AuthService) Login(email, password string) (*models.User, *utils.Tokens, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !utils.ComparePasswords(user.Password, password) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := utils.GenerateSessionTokens(user.ID, user.Email)
	if err != nil {
		logrus.Error("Error generating tokens: ", err)
		return nil, nil, errors.New("error generating token")
	}
	return user, tokens, nil
}
