package routes

import (
	"SocialPulse/auth"
	"SocialPulse/config"
	"SocialPulse/controllers"
	"SocialPulse/middlewares"
	"SocialPulse/repositories"
	"SocialPulse/services"
	"SocialPulse/storage"
	"SocialPulse/utils"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// SetupRouter wires repositories, services and controllers onto an Echo
// instance. Everything downstream of /api (except the OAuth callbacks,
// which providers hit unauthenticated) requires a session token.
func SetupRouter(cfg *config.Config, db *gorm.DB, states auth.StateStore, store storage.Storage) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middlewares.RecoveryMiddleware())
	e.Use(middlewares.ErrorHandler())

	userRepo := repositories.NewUserRepository(db)
	accountRepo := repositories.NewSocialAccountRepository(db)
	postRepo := repositories.NewPostRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)
	commentRepo := repositories.NewCommentRepository(db)

	authService := services.NewAuthService(userRepo)
	socialService := services.NewSocialService(cfg, accountRepo, states, store)
	postService := services.NewPostService(postRepo, socialService)
	analysisService := services.NewAnalysisService(analysisRepo, postRepo)
	commentService := services.NewCommentService(commentRepo, postRepo)

	authController := controllers.NewAuthController(authService)
	socialController := controllers.NewSocialController(socialService, cfg.FrontendURL)
	postController := controllers.NewPostController(postService, commentService)
	analysisController := controllers.NewAnalysisController(analysisService)

	authMw := middlewares.NewAuthMiddleware(utils.SessionValidator{}, userRepo)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")

	api.POST("/auth/register", authController.Register)
	api.POST("/auth/login", authController.Login)
	api.GET("/auth/me", authController.Me, authMw.RequireAuth())
	api.PUT("/users/profile", authController.UpdateProfile, authMw.RequireAuth())

	// The callback carries identity in the state token, not a session.
	// Providers redirect the browser with GET; the popup flow may also
	// relay code+state with POST.
	api.GET("/social/:platform/connect", socialController.Callback)
	api.POST("/social/:platform/connect", socialController.Callback)

	social := api.Group("/social", authMw.RequireAuth())
	social.GET("/:platform/oauth-url", socialController.Connect)
	social.POST("/:platform/disconnect", socialController.Disconnect)
	social.POST("/:platform/refresh", socialController.Refresh)
	social.GET("/:platform/status", socialController.Status)
	social.GET("/accounts", socialController.Accounts)
	social.PUT("/accounts", socialController.UpdateAccounts)
	social.POST("/accounts/:id/disconnect", socialController.DisconnectAccount)
	social.PUT("/accounts/:id/default", socialController.SetDefault)

	posts := api.Group("/posts", authMw.RequireAuth())
	posts.POST("", postController.Create)
	posts.GET("", postController.List)
	posts.GET("/:id", postController.Get)
	posts.PATCH("/:id/status", postController.UpdateStatus)
	posts.DELETE("/:id", postController.Delete)
	posts.POST("/:id/comments", postController.AddComments)
	posts.GET("/:id/comments", postController.ListComments)
	posts.GET("/:id/analysis", analysisController.GetByPost)

	analyses := api.Group("/analyses", authMw.RequireAuth())
	analyses.POST("", analysisController.Create)
	analyses.GET("", analysisController.List)
	analyses.GET("/stats", analysisController.Stats)
	analyses.GET("/:id", analysisController.Get)
	analyses.DELETE("/:id", analysisController.Delete)

	return e
}
