package router

import (
	"log/slog"

	"github.com/neuroteach/tutorbot/core/logger"
	tg "github.com/neuroteach/tutorbot/core/telegram"
	"github.com/neuroteach/tutorbot/core/telegram/middleware"
)

// CommandRoutes wraps every registered command handler with the shared
// middleware chain and returns them as routes.
func CommandRoutes(reg *tg.Registry) []tg.Route {
	if reg == nil {
		return nil
	}

	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, def := range reg.Commands() {
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  middleware.LoggerMiddleware(middleware.RecoverMiddleware(def.Handler)),
		})
	}

	logger.Info(logger.Background(), "tg.wire", "complete",
		slog.Int("commands", len(reg.Commands())),
		slog.Int("callbacks", len(reg.ListCallbacks())),
	)
	return routes
}
