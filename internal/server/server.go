package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caseworks/entitygraph/internal/metrics"
	"github.com/caseworks/entitygraph/internal/queue"
	mid "github.com/caseworks/entitygraph/internal/server/middleware"
	"github.com/caseworks/entitygraph/internal/util"
	"github.com/caseworks/entitygraph/pkg/graphstore"
	"github.com/caseworks/entitygraph/pkg/leaselock"
	"github.com/caseworks/entitygraph/pkg/logger"
	"github.com/caseworks/entitygraph/pkg/match"
	"github.com/caseworks/entitygraph/pkg/resolve"
	"github.com/caseworks/entitygraph/pkg/screen"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.InitFromEnv()

	graphPath := util.GetEnvString("GRAPH_PATH", "data/graph.json")

	// One process owns the graph document at a time.
	lease, err := leaselock.New().Acquire(ctx, graphPath+".lock", leaselock.Options{
		TTL: time.Minute,
	})
	if err != nil {
		logger.Fatal("Failed to acquire graph lease", "path", graphPath, "err", err)
	}
	defer func() {
		if err := lease.Release(); err != nil {
			logger.Error("Failed to release graph lease", "err", err)
		}
	}()

	store := graphstore.New(graphPath)
	degraded, err := store.Load()
	if err != nil {
		logger.Fatal("Failed to load graph", "err", err)
	}
	if degraded {
		logger.Warn("[Server] Graph document was unreadable, starting from an empty graph")
	}

	cmp := match.NewComparator(match.ConfigFromEnv())
	resolver := resolve.NewResolver(store, cmp)
	screener := screen.NewScreener(cmp, screen.FileLoader{
		Path: util.GetEnvString("REFERENCE_LIST_PATH", "data/reference.json"),
	})

	app := &mid.App{
		Resolver:   resolver,
		Comparator: cmp,
		Screener:   screener,
	}
	if util.GetEnv("RABBITMQ_HOST") != "" {
		que := queue.Init()
		defer que.Close()
		ch, err := que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(ch); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = ch
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}

	if err := util.RetryErr(3, resolver.Persist); err != nil {
		logger.Error("Failed to persist graph", "err", err)
	}
}
