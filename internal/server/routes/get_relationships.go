package routes

import (
	"net/http"

	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"

	"github.com/labstack/echo/v4"
)

// GetRelationshipsHandler lists the edges whose endpoints both belong to
// one investigation.
func GetRelationshipsHandler(c echo.Context) error {
	type relationshipsQuery struct {
		InvestigationID string `query:"investigation_id" validate:"required"`
	}

	type relationshipsResponse struct {
		Message       string                `json:"message"`
		Relationships []common.Relationship `json:"relationships"`
	}

	params := new(relationshipsQuery)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipsResponse{
			Message: "Invalid request",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipsResponse{
			Message: "Invalid request",
		})
	}

	resolver := c.(*middleware.AppContext).App.Resolver
	return c.JSON(http.StatusOK, relationshipsResponse{
		Message:       "OK",
		Relationships: resolver.Relationships(params.InvestigationID),
	})
}
