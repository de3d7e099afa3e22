package middlewares

import (
	"SocialPulse/models"
	"SocialPulse/repositories"
	"SocialPulse/utils"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type TokenValidator interface {
	ValidateToken(token string) (*utils.TokenClaims, error)
}

type AuthMiddleware struct {
	tokenValidator TokenValidator
	userRepo       repositories.UserRepository
}

func NewAuthMiddleware(validator TokenValidator, userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenValidator: validator,
		userRepo:       userRepo,
	}
}

// RequireAuth validates the bearer token and loads the user into context
// under "user".
func (am *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization token not found")
			}

			claims, err := am.tokenValidator.ValidateToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			user, err := am.userRepo.FindByID(claims.UserID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
			}

			c.Set("user", user)
			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	header := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// CurrentUser pulls the authenticated user set by RequireAuth.
func CurrentUser(c echo.Context) (*models.User, bool) {
	user, ok := c.Get("user").(*models.User)
	return user, ok
}
