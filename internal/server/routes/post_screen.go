package routes

import (
	"encoding/json"
	"net/http"

	"github.com/caseworks/entitygraph/internal/queue"
	"github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/pkg/common"
	"github.com/caseworks/entitygraph/pkg/logger"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ScreenHandler checks names against the reference list. Single names
// run inline; with async=true the batch is queued for the worker.
func ScreenHandler(c echo.Context) error {
	type screenBody struct {
		Names []string `json:"names" validate:"required,min=1"`
		TopN  int      `json:"top_n"`
		Async bool     `json:"async"`
	}

	type screenResponse struct {
		Message string                           `json:"message"`
		JobID   string                           `json:"job_id,omitempty"`
		Hits    map[string][]common.ScreeningHit `json:"hits,omitempty"`
	}

	data := new(screenBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, screenResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, screenResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App

	if data.Async {
		if app.Queue == nil {
			return c.JSON(http.StatusServiceUnavailable, screenResponse{
				Message: "Async processing is not available",
			})
		}

		jobID, err := gonanoid.New()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, screenResponse{
				Message: "Internal server error",
			})
		}

		payload, err := json.Marshal(queue.ScreenJobMsg{
			JobID: jobID,
			Names: data.Names,
			TopN:  data.TopN,
		})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, screenResponse{
				Message: "Internal server error",
			})
		}
		if err := queue.PublishFIFO(app.Queue, queue.ScreenQueue, payload); err != nil {
			logger.Error("[Server] Failed to publish screen job", "err", err)
			return c.JSON(http.StatusInternalServerError, screenResponse{
				Message: "Failed to queue job",
			})
		}

		return c.JSON(http.StatusAccepted, screenResponse{
			Message: "Job queued",
			JobID:   jobID,
		})
	}

	hits := make(map[string][]common.ScreeningHit, len(data.Names))
	for _, name := range data.Names {
		nameHits, err := app.Screener.Screen(name, data.TopN)
		if err != nil {
			logger.Error("[Server] Screening failed", "name", name, "err", err)
			return c.JSON(http.StatusInternalServerError, screenResponse{
				Message: "Internal server error",
			})
		}
		hits[name] = nameHits
	}

	return c.JSON(http.StatusOK, screenResponse{
		Message: "OK",
		Hits:    hits,
	})
}

// ReloadReferenceListHandler refreshes the cached screening reference
// list from its loader.
func ReloadReferenceListHandler(c echo.Context) error {
	type reloadResponse struct {
		Message string `json:"message"`
	}

	screener := c.(*middleware.AppContext).App.Screener
	if err := screener.Reload(); err != nil {
		logger.Error("[Server] Reference list reload failed", "err", err)
		return c.JSON(http.StatusInternalServerError, reloadResponse{
			Message: "Failed to reload reference list",
		})
	}

	return c.JSON(http.StatusOK, reloadResponse{
		Message: "Reference list reloaded",
	})
}
