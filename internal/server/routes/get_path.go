package routes

import (
	"net/http"

	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"

	"github.com/labstack/echo/v4"
)

// GetPathHandler returns the shortest undirected path between two
// entities, as an ordered list of entities. An empty path means the
// entities are not connected.
func GetPathHandler(c echo.Context) error {
	type pathQuery struct {
		SourceID string `query:"source_id" validate:"required"`
		TargetID string `query:"target_id" validate:"required"`
	}

	type pathResponse struct {
		Message string          `json:"message"`
		Path    []common.Entity `json:"path"`
	}

	params := new(pathQuery)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, pathResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, pathResponse{
			Message: "Invalid request",
		})
	}

	resolver := c.(*middleware.AppContext).App.Resolver
	path := resolver.FindPath(params.SourceID, params.TargetID)
	return c.JSON(http.StatusOK, pathResponse{
		Message: "OK",
		Path:    path,
	})
}
