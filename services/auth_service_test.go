package services

import (
	"SocialPulse/repositories"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	repo := repositories.NewMockUserRepository()
	svc := NewAuthService(repo)

	user, err := svc.Register("Test User", "user@example.com", "password123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "password123", user.Password)

	loggedIn, tokens, err := svc.Login("user@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	svc := NewAuthService(repo)

	_, err := svc.Register("Test User", "user@example.com", "password123")
	require.NoError(t, err)

	_, err = svc.Register("Other User", "user@example.com", "different")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	svc := NewAuthService(repo)

	user, err := svc.Register("Old Name", "user@example.com", "password123")
	require.NoError(t, err)

	name := "New Name"
	avatar := "http://cdn.example/me.png"
	updated, err := svc.UpdateProfile(user.ID, UpdateProfileInput{Name: &name, AvatarURL: &avatar})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, avatar, updated.AvatarURL)

	stored, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", stored.Name)
	assert.Equal(t, user.Email, stored.Email)
	assert.Equal(t, user.Password, stored.Password)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := repositories.NewMockUserRepository()
	svc := NewAuthService(repo)

	_, err := svc.Register("Test User", "user@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login("user@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(repositories.NewMockUserRepository())

	_, _, err := svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
