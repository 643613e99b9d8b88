package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"mutevote/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	// Collapse concurrent probes into one backend round trip.
	_, err, _ := s.ready.Do("backend", func() (any, error) {
		return nil, s.backend.Ping(ctx)
	})
	if err != nil {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "backend",
			"error":        err.Error(),
		})
	}

	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(c echo.Context) error {
	return c.JSON(200, version.Get())
}
