// Package server exposes the recommendation pipeline and the agent loop
// over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/meetspot-ai/meetspot/internal/agent"
	"github.com/meetspot-ai/meetspot/internal/amap"
	"github.com/meetspot-ai/meetspot/internal/recommend"
	"github.com/meetspot-ai/meetspot/internal/telemetry"
)

// Server wires the HTTP surface.
type Server struct {
	echo    *echo.Echo
	service *recommend.Service
	orch    *agent.Orchestrator
	logger  *log.Logger
}

// New builds the server. orch may be nil when the agent surface is
// disabled (no LLM key configured).
func New(service *recommend.Service, orch *agent.Orchestrator, metrics *telemetry.Metrics, logger *log.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{echo: e, service: service, orch: orch, logger: logger}
	e.HTTPErrorHandler = s.errorHandler

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}
	e.POST("/api/recommendations", s.handleRecommend)
	e.POST("/api/agent/run", s.handleAgentRun)
	e.GET("/api/agent/state", s.handleAgentState)

	return s
}

// Start blocks serving on addr.
func (s *Server) Start(addr string) error {
	s.logger.Printf("listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleRecommend(c echo.Context) error {
	var req recommend.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	result, err := s.service.Recommend(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

type agentRunRequest struct {
	Task string `json:"task"`
}

func (s *Server) handleAgentRun(c echo.Context) error {
	if s.orch == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "agent is not configured")
	}
	var req agentRunRequest
	if err := c.Bind(&req); err != nil || req.Task == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "task is required")
	}
	outcome, err := s.orch.Run(c.Request().Context(), req.Task)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, outcome)
}

func (s *Server) handleAgentState(c echo.Context) error {
	if s.orch == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "agent is not configured")
	}
	return c.JSON(http.StatusOK, map[string]string{"state": string(s.orch.State())})
}

// errorHandler maps the domain error taxonomy to HTTP statuses and a
// uniform JSON body.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := map[string]interface{}{"error": err.Error()}

	var (
		httpErr    *echo.HTTPError
		resErr     *recommend.AddressResolutionError
		insErr     *recommend.InsufficientInputError
		noVenues   *recommend.NoVenuesFoundError
		rateLimit  *amap.RateLimitError
		upstreamAP *amap.APIError
	)
	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Code
		body["error"] = httpErr.Message
	case errors.As(err, &insErr):
		status = http.StatusBadRequest
	// Upstream failures win over the resolution wrapper so a geocode
	// that died on a rate limit still maps to 503, not 422.
	case errors.As(err, &rateLimit):
		status = http.StatusServiceUnavailable
	case errors.As(err, &upstreamAP):
		status = http.StatusBadGateway
	case errors.As(err, &resErr):
		status = http.StatusUnprocessableEntity
		body["suggestions"] = resErr.Suggestions
		if resErr.Expanded != "" && resErr.Expanded != resErr.Input {
			body["expanded_as"] = resErr.Expanded
		}
	case errors.As(err, &noVenues):
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		s.logger.Printf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	}
	if err := c.JSON(status, body); err != nil {
		s.logger.Printf("writing error response: %v", err)
	}
}
