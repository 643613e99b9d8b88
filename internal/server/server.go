package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/sync/singleflight"

	"mutevote/internal/config"
	"mutevote/internal/domain"
	apperrors "mutevote/internal/errors"
)

// backendPinger checks reachability of the chat backend for readiness probes.
type backendPinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	votes     domain.VoteService
	store     domain.VoteStore
	backend   backendPinger
	limiter   *EventRateLimiter
	ready     singleflight.Group
	startTime time.Time
}

func NewServer(cfg *config.Config, votes domain.VoteService, store domain.VoteStore, backend backendPinger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))

	srv := &Server{
		echo:      e,
		config:    cfg,
		votes:     votes,
		store:     store,
		backend:   backend,
		limiter:   NewEventRateLimiter(eventRatePerSecond, eventRateBurst),
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
