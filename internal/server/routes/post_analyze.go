package routes

import (
	"net/http"
	"strconv"

	"github.com/lumen-atj/lumen/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

const headerRateLimitRemaining = "X-RateLimit-Remaining"

// AnalyzeHandler returns the argument graph of the posted article text.
// The quota is charged before the body is read.
func AnalyzeHandler(c echo.Context) error {
	type analyzeBody struct {
		Text string `json:"text"`
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

	data := new(analyzeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
	}

	result, err := ac.App.Analyzer.Analyze(ctx, data.Text)
	if err != nil {
		return writeError(c, err)
	}

	c.Response().Header().Set(headerRateLimitRemaining, strconv.Itoa(quota.Remaining))
	return c.JSON(http.StatusOK, result)
}
