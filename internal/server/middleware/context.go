package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/caseworks/entitygraph/pkg/match"
	"github.com/caseworks/entitygraph/pkg/resolve"
	"github.com/caseworks/entitygraph/pkg/screen"
)

// App holds the shared service handles every request needs. Queue is nil
// when the server runs without a broker; async endpoints report that.
type App struct {
	Resolver   *resolve.Resolver
	Comparator *match.Comparator
	Screener   *screen.Screener
	Queue      *amqp091.Channel
}

type AppContext struct {
	echo.Context
	App *App
}

func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
