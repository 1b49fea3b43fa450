package routes

import (
	"net/http"

	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"

	"github.com/labstack/echo/v4"
)

// GetEntitiesHandler lists the entities of one investigation.
func GetEntitiesHandler(c echo.Context) error {
	type entitiesQuery struct {
		InvestigationID string `query:"investigation_id" validate:"required"`
	}

	type entitiesResponse struct {
		Message  string          `json:"message"`
		Entities []common.Entity `json:"entities"`
	}

	params := new(entitiesQuery)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, entitiesResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, entitiesResponse{
			Message: "Invalid request",
		})
	}

	resolver := c.(*middleware.AppContext).App.Resolver
	return c.JSON(http.StatusOK, entitiesResponse{
		Message:  "OK",
		Entities: resolver.Entities(params.InvestigationID),
	})
}

// GetEntityHandler returns a single entity by id.
func GetEntityHandler(c echo.Context) error {
	type entityResponse struct {
		Message string         `json:"message"`
		Entity  *common.Entity `json:"entity,omitempty"`
	}

	id := c.Param("id")
	resolver := c.(*middleware.AppContext).App.Resolver
	entity, ok := resolver.Entity(id)
	if !ok {
		return c.JSON(http.StatusNotFound, entityResponse{
			Message: "Entity not found",
		})
	}

	return c.JSON(http.StatusOK, entityResponse{
		Message: "OK",
		Entity:  &entity,
	})
}

// GetEntityRelationshipsHandler returns every edge touching an entity,
// incoming and outgoing.
func GetEntityRelationshipsHandler(c echo.Context) error {
	type relationshipsResponse struct {
		Message       string                `json:"message"`
		Relationships []common.Relationship `json:"relationships"`
	}

	id := c.Param("id")
	resolver := c.(*middleware.AppContext).App.Resolver
	if _, ok := resolver.Entity(id); !ok {
		return c.JSON(http.StatusNotFound, relationshipsResponse{
			Message: "Entity not found",
		})
	}

	return c.JSON(http.StatusOK, relationshipsResponse{
		Message:       "OK",
		Relationships: resolver.EntityRelationships(id),
	})
}
