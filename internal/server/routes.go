package server

import (
	"github.com/lumen-atj/lumen/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Analysis routes
	apiRoutes.POST("/analyze", routes.AnalyzeHandler)
	apiRoutes.POST("/analyze-page", routes.AnalyzePageHandler)

	// Page routes
	apiRoutes.POST("/fetch-url", routes.FetchURLHandler)

	// Schema of the analysis document
	apiRoutes.GET("/schema", routes.GetSchemaHandler)
}
