package routes

import (
	"net/http"

	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/resolve"

	"github.com/labstack/echo/v4"
)

// ResolveEntityHandler resolves a name within an investigation, matching
// an existing entity or creating a new one.
func ResolveEntityHandler(c echo.Context) error {
	type resolveBody struct {
		Name            string `json:"name" validate:"required"`
		EntityType      string `json:"entity_type"`
		InvestigationID string `json:"investigation_id" validate:"required"`
		SourceRecordID  string `json:"source_record_id"`
	}

	type resolveResponse struct {
		Message    string              `json:"message"`
		Resolution *resolve.Resolution `json:"resolution,omitempty"`
	}

	data := new(resolveBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveResponse{
			Message: "Invalid request body",
		})
	}

	resolver := c.(*middleware.AppContext).App.Resolver
	resolution, err := resolver.ResolveOrCreate(
		data.Name,
		common.ParseEntityType(data.EntityType),
		data.InvestigationID,
		data.SourceRecordID,
	)
	if err != nil {
		logger.Error("[Server] Resolution failed", "err", err)
		return c.JSON(http.StatusBadRequest, resolveResponse{
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, resolveResponse{
		Message:    "Resolved successfully",
		Resolution: &resolution,
	})
}
