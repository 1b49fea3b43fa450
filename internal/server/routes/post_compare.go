package routes

import (
	"net/http"

	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"

	"github.com/labstack/echo/v4"
)

// CompareNamesHandler scores a single pair of names without touching the
// graph. Useful for tuning thresholds and inspecting normalization.
func CompareNamesHandler(c echo.Context) error {
	type compareBody struct {
		NameA      string `json:"name_a" validate:"required"`
		NameB      string `json:"name_b" validate:"required"`
		EntityType string `json:"entity_type"`
	}

	type compareResponse struct {
		Message string              `json:"message"`
		Result  *common.MatchResult `json:"result,omitempty"`
	}

	data := new(compareBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, compareResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, compareResponse{
			Message: "Invalid request body",
		})
	}

	cmp := c.(*middleware.AppContext).App.Comparator
	result := cmp.Compare(data.NameA, data.NameB, common.ParseEntityType(data.EntityType))
	return c.JSON(http.StatusOK, compareResponse{
		Message: "OK",
		Result:  &result,
	})
}
