package telegram

import (
	"github.com/neuroteach/tutorbot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared global middleware chain.
func DefaultMiddlewares() []Middleware {
	return []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
}
