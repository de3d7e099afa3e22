package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenClaims define the session token payload.
type TokenClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Tokens structure for grouping Access and Refresh Tokens
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// GenerateSessionTokens generates an access token and a refresh token
func GenerateSessionTokens(userID uint, email string) (*Tokens, error) {
	accessToken, err := generateJWT(userID, email, 24*time.Hour)
	if err != nil {
		return nil, err
	}

	refreshToken, err := generateJWT(userID, email, 7*24*time.Hour) // Valid for 7 days
	if err != nil {
		return nil, err
	}

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// ValidateSessionToken validates a JWT session token and returns its claims
func ValidateSessionToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// SessionValidator adapts the package helpers to middleware interfaces.
type SessionValidator struct{}

func (SessionValidator) ValidateToken(token string) (*TokenClaims, error) {
	return ValidateSessionToken(token)
}

// generateJWT creates a JWT token with expiration time
func generateJWT(userID uint, email string, duration time.Duration) (string, error) {
	claims := &TokenClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}
