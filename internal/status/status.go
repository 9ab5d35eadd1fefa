// Package status serves the observability surface: service info, liveness,
// store stats and Prometheus metrics over a small fiber server.
package status

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/neuroteach/tutorbot/core/buildinfo"
	"github.com/neuroteach/tutorbot/core/logger"
	"github.com/neuroteach/tutorbot/internal/progress"
	"github.com/neuroteach/tutorbot/internal/session"
)

const serviceName = "neuroteach-tutorbot"

// Server exposes read-only projections of the in-memory stores.
type Server struct {
	app      *fiber.App
	progress progress.Backend
	sessions *session.Manager
	model    string
	started  time.Time
}

// New builds the status server over the given stores.
func New(tracker progress.Backend, sessions *session.Manager, model string) *Server {
	s := &Server{
		progress: tracker,
		sessions: sessions,
		model:    model,
		started:  time.Now(),
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	})
	app.Use(fiberrecover.New())

	app.Get("/", s.infoHandler)
	app.Get("/health", s.healthHandler)
	app.Get("/stats", s.statsHandler)
	app.Get("/metrics", s.metricsHandler)

	s.app = app
	return s
}

// Start listens on the given address in a background goroutine.
func (s *Server) Start(listen string, port int) {
	addr := fmt.Sprintf("%s:%d", listen, port)
	go func() {
		logger.Info(logger.Background(), "status", "listen",
			slog.String("addr", addr),
		)
		if err := s.app.Listen(addr); err != nil {
			logger.Error(logger.Background(), "status", "listen.failed",
				slog.String("addr", addr),
				slog.String("err", err.Error()),
			)
		}
	}()
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) infoHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "NeuroTeacher - Dialog Education Platform",
		"service":     serviceName,
		"version":     buildinfo.Version,
		"ready":       true,
		"ai_provider": s.model,
	})
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"service":   serviceName,
		"ai":        s.model,
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) statsHandler(c *fiber.Ctx) error {
	live, suspended := s.sessions.Counts()
	return c.JSON(fiber.Map{
		"users":              s.progress.Users(),
		"sessions_live":      live,
		"sessions_suspended": suspended,
		"uptime_seconds":     int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}
