package routes

import (
	"net/http"

	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/resolve"

	"github.com/labstack/echo/v4"
)

// CreateRelationshipHandler records a typed edge between two existing
// entities. Invalid types and missing endpoints come back as structured
// rejections with status 422.
func CreateRelationshipHandler(c echo.Context) error {
	type relationshipBody struct {
		SourceID   string         `json:"source_id" validate:"required"`
		TargetID   string         `json:"target_id" validate:"required"`
		Type       string         `json:"type" validate:"required"`
		Properties map[string]any `json:"properties"`
	}

	type relationshipResponse struct {
		Message string                      `json:"message"`
		Result  *resolve.RelationshipResult `json:"result,omitempty"`
	}

	data := new(relationshipBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, relationshipResponse{
			Message: "Invalid request body",
		})
	}

	resolver := c.(*middleware.AppContext).App.Resolver
	result := resolver.AddRelationship(data.SourceID, data.TargetID, common.RelType(data.Type), data.Properties)
	if !result.Accepted {
		return c.JSON(http.StatusUnprocessableEntity, relationshipResponse{
			Message: "Relationship rejected",
			Result:  &result,
		})
	}

	return c.JSON(http.StatusOK, relationshipResponse{
		Message: "Relationship created",
		Result:  &result,
	})
}
