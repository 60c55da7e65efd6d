package routes

import (
	"errors"
	"net/http"

	"github.com/lumen-atj/lumen/backend/internal/server/middleware"
	"github.com/lumen-atj/lumen/backend/pkg/ai"
	"github.com/lumen-atj/lumen/backend/pkg/analysis"
	"github.com/lumen-atj/lumen/backend/pkg/extract"
	"github.com/lumen-atj/lumen/backend/pkg/graph"
	"github.com/lumen-atj/lumen/backend/pkg/loader/web"
	"github.com/lumen-atj/lumen/backend/pkg/ratelimit"

	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error string `json:"error"`
}

// errorStatus maps a pipeline error to its HTTP status and the message shown
// to the caller. Unknown errors are reported as a generic 500.
func errorStatus(err error) (int, string) {
	var fetchErr *web.FetchError

	switch {
	case errors.Is(err, ratelimit.ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()
	case errors.Is(err, analysis.ErrMissingConfiguration):
		return http.StatusInternalServerError, "Service is not configured"
	case errors.Is(err, analysis.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, extract.ErrExtractionFailed):
		return http.StatusUnprocessableEntity, "Could not extract meaningful text from this page"
	case errors.Is(err, ai.ErrUpstreamTimeout):
		return http.StatusGatewayTimeout, "Upstream timeout"
	case errors.Is(err, ai.ErrUpstreamUnreachable):
		return http.StatusBadGateway, "Upstream request failed"
	case errors.Is(err, ai.ErrUpstream):
		return http.StatusBadGateway, err.Error()
	case errors.Is(err, graph.ErrParseFailed):
		return http.StatusInternalServerError, graph.ErrParseFailed.Error()
	case errors.Is(err, graph.ErrValidationFailed):
		return http.StatusInternalServerError, err.Error()
	case errors.Is(err, web.ErrInvalidURL), errors.Is(err, web.ErrUnsupportedURL), errors.Is(err, web.ErrNotHTML),
		errors.Is(err, web.ErrBlockedAddress):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(c echo.Context, err error) error {
	status, msg := errorStatus(err)

	if ac, ok := c.(*middleware.AppContext); ok {
		if status >= http.StatusInternalServerError {
			ac.Log.Error("Request failed", "path", c.Path(), "status", status, "err", err)
		} else {
			ac.Log.Debug("Request rejected", "path", c.Path(), "status", status, "err", err)
		}
	}

	return c.JSON(status, errorResponse{Error: msg})
}
