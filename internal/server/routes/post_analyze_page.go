package routes

import (
	"net/http"
	"strconv"

	"github.com/lumen-atj/lumen/backend/internal/server/middleware"
	"github.com/lumen-atj/lumen/backend/pkg/analysis"

	"github.com/labstack/echo/v4"
)

// AnalyzePageHandler analyzes the HTML of a page captured in the browser.
func AnalyzePageHandler(c echo.Context) error {
	type analyzePageBody struct {
		HTML  string `json:"html" validate:"required"`
		URL   string `json:"url" validate:"omitempty,url"`
		Title string `json:"title"`
	}

	ac := c.(*middleware.AppContext)
	ctx := c.Request().Context()

	quota, err := ac.App.Limiter.Check(ctx, ac.ClientID)
	if err != nil {
		return writeError(c, err)
	}
	if err := ac.App.Analyzer.Ready(); err != nil {
		return writeError(c, err)
	}

	data := new(analyzePageBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "html is required and url must be absolute"})
	}

	result, err := ac.App.Analyzer.AnalyzePage(ctx, analysis.Page{
		HTML:  data.HTML,
		URL:   data.URL,
		Title: data.Title,
	})
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(headerRateLimitRemaining, strconv.Itoa(quota.Remaining))
	return c.JSON(http.StatusOK, result)
}
