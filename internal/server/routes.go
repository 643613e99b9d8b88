package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	s.echo.GET("/version", s.handleVersion)

	// Event webhook from the chat backend
	s.echo.POST("/onebot/event", s.handleEvent, s.rateLimitEvents)

	// Operator API over the active vote registry
	s.echo.GET("/api/votes", s.handleListVotes)
	s.echo.DELETE("/api/votes/:id", s.handleCancelVote)
}
