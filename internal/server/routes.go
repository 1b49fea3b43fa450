package server

import (
	"github.com/caseworks/entitygraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api")

	// Resolution routes
	apiRoutes.POST("/resolve", routes.ResolveEntityHandler)
	apiRoutes.POST("/compare", routes.CompareNamesHandler)

	// Graph routes
	apiRoutes.GET("/entities", routes.GetEntitiesHandler)
	apiRoutes.GET("/entities/:id", routes.GetEntityHandler)
	apiRoutes.GET("/entities/:id/relationships", routes.GetEntityRelationshipsHandler)
	apiRoutes.POST("/relationships", routes.CreateRelationshipHandler)
	apiRoutes.GET("/relationships", routes.GetRelationshipsHandler)
	apiRoutes.GET("/path", routes.GetPathHandler)

	// Batch routes
	apiRoutes.POST("/dedupe", routes.DedupeHandler)

	// Screening routes
	apiRoutes.POST("/screen", routes.ScreenHandler)
	apiRoutes.POST("/screen/reload", routes.ReloadReferenceListHandler)
}
