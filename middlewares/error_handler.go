package middlewares

import (
	"SocialPulse/repositories"
	"SocialPulse/services"
	"SocialPulse/services/platform"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// statusFor maps service-layer errors onto HTTP statuses. Expired tokens are
// distinguishable from never-connected accounts so clients know whether to
// refresh or to restart the connect flow.
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	switch {
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, platform.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, repositories.ErrAccountNotFound),
		errors.Is(err, repositories.ErrPostNotFound),
		errors.Is(err, repositories.ErrAnalysisNotFound),
		errors.Is(err, platform.ErrNotConnected):
		return http.StatusNotFound
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, platform.ErrNoRefreshToken),
		errors.Is(err, platform.ErrMissingAccessToken),
		errors.Is(err, platform.ErrMissingOpenID),
		errors.Is(err, platform.ErrUnsupportedPlatform),
		errors.Is(err, services.ErrMissingCode),
		errors.Is(err, services.ErrInvalidSentiment),
		errors.Is(err, services.ErrAccountPlatformMismatch):
		return http.StatusBadRequest
	}

	var providerErr *platform.ProviderError
	if errors.As(err, &providerErr) {
		if providerErr.StatusCode >= http.StatusInternalServerError {
			return http.StatusBadGateway
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func ErrorHandler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}
			if c.Response().Committed {
				return err
			}

			status := statusFor(err)
			message := err.Error()
			if status == http.StatusInternalServerError {
				logrus.Error("Error request: ", err)
				message = "failed to process request"
			}
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				if s, ok := httpErr.Message.(string); ok {
					message = s
				}
			}
			return c.JSON(status, echo.Map{"error": message})
		}
	}
}
