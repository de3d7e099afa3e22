package controllers

import (
	"SocialPulse/middlewares"
	"SocialPulse/models"
	"SocialPulse/services"
	"bytes"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// callbackPage is served into the OAuth popup. It hands the outcome to the
// opening window via postMessage and closes itself; the callback never
// answers with an HTTP error status because the popup is the only audience.
var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head><title>Connecting account</title></head>
<body>
<script>
(function () {
	var payload = {{.Payload}};
	if (window.opener) {
		window.opener.postMessage(payload, {{.TargetOrigin}});
	}
	window.close();
})();
</script>
<p>You can close this window.</p>
</body>
</html>`))

type SocialController struct {
	social      *services.SocialService
	frontendURL string
}

func NewSocialController(social *services.SocialService, frontendURL string) *SocialController {
	return &SocialController{social: social, frontendURL: frontendURL}
}

// Connect returns the provider authorization URL for the popup to open.
func (sc *SocialController) Connect(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	p := models.Platform(c.Param("platform"))

	authURL, err := sc.social.AuthURL(c.Request().Context(), user.ID, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"auth_url": authURL})
}

// Callback receives the provider redirect. It is unauthenticated; the state
// token is the only link back to the connecting user.
func (sc *SocialController) Callback(c echo.Context) error {
	p := models.Platform(c.Param("platform"))
	code := c.QueryParam("code")
	state := c.QueryParam("state")

	if errParam := c.QueryParam("error"); errParam != "" {
		message := errParam
		if desc := c.QueryParam("error_description"); desc != "" {
			message = desc
		}
		return sc.renderCallback(c, p, nil, message)
	}

	account, err := sc.social.HandleCallback(c.Request().Context(), p, state, code)
	if err != nil {
		logrus.WithError(err).WithField("platform", p).Warn("oauth callback failed")
		return sc.renderCallback(c, p, nil, err.Error())
	}
	return sc.renderCallback(c, p, account, "")
}

func (sc *SocialController) renderCallback(c echo.Context, p models.Platform, account *services.PublicAccount, message string) error {
	payload := map[string]interface{}{
		"type":     "oauth_callback",
		"platform": string(p),
		"success":  account != nil,
	}
	if account != nil {
		payload["data"] = account
	}
	if message != "" {
		payload["error"] = message
	}
	targetOrigin := sc.frontendURL
	if targetOrigin == "" {
		targetOrigin = "*"
	}

	var buf bytes.Buffer
	if err := callbackPage.Execute(&buf, map[string]interface{}{
		"Payload":      payload,
		"TargetOrigin": targetOrigin,
	}); err != nil {
		return err
	}
	return c.HTML(http.StatusOK, buf.String())
}

func (sc *SocialController) Accounts(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	accounts, err := sc.social.Accounts(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"accounts": accounts})
}

func (sc *SocialController) UpdateAccounts(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var req struct {
		Accounts []services.AccountUpdate `json:"accounts"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := sc.social.UpdateAccounts(user.ID, req.Accounts); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "accounts updated"})
}

func (sc *SocialController) Disconnect(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	p := models.Platform(c.Param("platform"))

	if err := sc.social.Disconnect(c.Request().Context(), user.ID, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account disconnected"})
}

func (sc *SocialController) DisconnectAccount(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	if err := sc.social.DisconnectAccount(c.Request().Context(), user.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "account disconnected"})
}

func (sc *SocialController) SetDefault(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	if err := sc.social.SetDefault(user.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "default account updated"})
}

func (sc *SocialController) Refresh(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	p := models.Platform(c.Param("platform"))

	if err := sc.social.RefreshToken(c.Request().Context(), user.ID, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "token refreshed"})
}

// Status runs the lifecycle check a credential consumer would run, without
// consuming the credential.
func (sc *SocialController) Status(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	p := models.Platform(c.Param("platform"))

	if err := sc.social.EnsureValidToken(c.Request().Context(), user.ID, p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "valid"})
}
