package controllers

import (
	"SocialPulse/middlewares"
	"SocialPulse/models"
	"SocialPulse/repositories"
	"SocialPulse/services"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type PostController struct {
	posts    *services.PostService
	comments *services.CommentService
}

func NewPostController(posts *services.PostService, comments *services.CommentService) *PostController {
	return &PostController{posts: posts, comments: comments}
}

func (pc *PostController) Create(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var input services.CreatePostInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if input.PostURL == "" && input.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "post_url or content is required")
	}

	post, err := pc.posts.Create(c.Request().Context(), user.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

func (pc *PostController) Get(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	post, err := pc.posts.Get(user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (pc *PostController) List(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	opts := repositories.PostListOptions{
		Platform: models.Platform(c.QueryParam("platform")),
		Status:   models.PostStatus(c.QueryParam("status")),
		Limit:    queryInt(c, "limit", 20),
		Offset:   queryInt(c, "offset", 0),
	}
	posts, err := pc.posts.List(user.ID, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

func (pc *PostController) UpdateStatus(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var req struct {
		Status models.PostStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if err := pc.posts.UpdateStatus(user.ID, c.Param("id"), req.Status); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "status updated"})
}

func (pc *PostController) Delete(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	if err := pc.posts.Delete(user.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "post deleted"})
}

func (pc *PostController) AddComments(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var req struct {
		Comments []services.CreateCommentInput `json:"comments"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	comments, err := pc.comments.AddBatch(user.ID, c.Param("id"), req.Comments)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{"comments": comments})
}

func (pc *PostController) ListComments(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	comments, err := pc.comments.List(user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
