package routes

import (
	"encoding/json"
	"net/http"

	"github.com/caseworks/entitygraph/internal/queue"
	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/match"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DedupeHandler runs a batch deduplication pass. Small batches run
// inline; with async=true the job is queued and the worker publishes the
// result to the results queue under the returned job id.
func DedupeHandler(c echo.Context) error {
	type dedupeBody struct {
		Records []match.Record     `json:"records" validate:"required"`
		Options match.BatchOptions `json:"options"`
		Async   bool               `json:"async"`
	}

	type dedupeResponse struct {
		Message string                   `json:"message"`
		JobID   string                   `json:"job_id,omitempty"`
		Result  *common.BatchMatchResult `json:"result,omitempty"`
	}

	data := new(dedupeBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, dedupeResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, dedupeResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App

	if data.Async {
		if app.Queue == nil {
			return c.JSON(http.StatusServiceUnavailable, dedupeResponse{
				Message: "Async processing is not available",
			})
		}

		jobID, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dedupeResponse{
				Message: "Internal server error",
			})
		}

		payload, err := json.Marshal(queue.DedupeJobMsg{
			JobID:   jobID,
			Records: data.Records,
			Options: data.Options,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, dedupeResponse{
				Message: "Internal server error",
			})
		}
		if err := queue.PublishFIFO(app.Queue, queue.DedupeQueue, payload); err != nil {
			logger.Error("[Server] Failed to publish dedupe job", "err", err)
			return c.JSON(http.StatusInternalServerError, dedupeResponse{
				Message: "Failed to queue job",
			})
		}

		return c.JSON(http.StatusAccepted, dedupeResponse{
			Message: "Job queued",
			JobID:   jobID,
		})
	}

	result, err := app.Comparator.BatchResolve(c.Request().Context(), data.Records, data.Options)
	if err != nil {
		logger.Error("[Server] Batch dedupe failed", "err", err)
		return c.JSON(http.StatusInternalServerError, dedupeResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, dedupeResponse{
		Message: "OK",
		Result:  &result,
	})
}
