package routes

import (
	"net/http"

	"github.com/lumen-atj/lumen/backend/pkg/graph"

	"github.com/labstack/echo/v4"
)

// GetSchemaHandler serves the JSON Schema of the analysis document.
func GetSchemaHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, graph.Schema())
}
