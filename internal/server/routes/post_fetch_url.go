package routes

import (
	"net/http"

	"github.com/lumen-atj/lumen/backend/internal/server/middleware"

	"github.com/labstack/echo/v4"
)

// FetchURLHandler downloads a page and returns its extracted article text.
func FetchURLHandler(c echo.Context) error {
	type fetchURLBody struct {
		URL string `json:"url" validate:"required"`
	}

	data := new(fetchURLBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Invalid JSON body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "Missing url field"})
	}

	ac := c.(*middleware.AppContext)
	page, err := ac.App.Loader.Load(c.Request().Context(), data.URL)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, page)
}
