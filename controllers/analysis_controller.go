package controllers

import (
	"SocialPulse/middlewares"
	"SocialPulse/repositories"
	"SocialPulse/services"
	"net/http"

	"github.com/labstack/echo/v4"
)

type AnalysisController struct {
	analyses *services.AnalysisService
}

func NewAnalysisController(analyses *services.AnalysisService) *AnalysisController {
	return &AnalysisController{analyses: analyses}
}

func (ac *AnalysisController) Create(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	var input services.CreateAnalysisInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request payload")
	}
	if input.PostID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "post_id is required")
	}

	analysis, err := ac.analyses.Create(user.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, analysis)
}

func (ac *AnalysisController) Get(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	analysis, err := ac.analyses.Get(user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysis)
}

func (ac *AnalysisController) GetByPost(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	analysis, err := ac.analyses.GetByPost(user.ID, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysis)
}

func (ac *AnalysisController) List(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}

	opts := repositories.AnalysisListOptions{
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Limit:     queryInt(c, "limit", 20),
		Offset:    queryInt(c, "offset", 0),
	}
	analyses, err := ac.analyses.List(user.ID, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"analyses": analyses})
}

func (ac *AnalysisController) Stats(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	stats, err := ac.analyses.Stats(user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (ac *AnalysisController) Delete(c echo.Context) error {
	user, ok := middlewares.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "user not found in context")
	}
	if err := ac.analyses.Delete(user.ID, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "analysis deleted"})
}
