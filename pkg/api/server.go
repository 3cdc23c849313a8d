// Package api exposes the Control API and event-stream endpoints described
// in the system's external interfaces: starting, pausing, resuming,
// stopping, and resetting experiments, reading their status and metrics,
// and inspecting or resetting the process-wide defense statistics. Routing
// follows this module's gin-based control-plane server, generalized from
// one alert-processing session to many independently supervised
// experiments.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shieldloop/sentryloop/pkg/events"
	"github.com/shieldloop/sentryloop/pkg/experiment"
	"github.com/shieldloop/sentryloop/pkg/metrics"
)

// Server is the HTTP control-plane server.
type Server struct {
	engine     *gin.Engine
	supervisor *experiment.Supervisor
	bus        *events.Bus
	httpServer *http.Server
}

// NewServer wires every route onto a fresh gin.Engine.
func NewServer(supervisor *experiment.Supervisor, bus *events.Bus) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{engine: engine, supervisor: supervisor, bus: bus}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)

	exp := s.engine.Group("/experiments")
	{
		exp.POST("", s.start)
		exp.GET("", s.list)
		exp.GET("/:uuid", s.status)
		exp.GET("/:uuid/metrics", s.metrics)
		exp.POST("/:uuid/pause", s.pause)
		exp.POST("/:uuid/resume", s.resume)
		exp.POST("/:uuid/stop", s.stop)
		exp.POST("/:uuid/reset", s.reset)
	}

	defense := s.engine.Group("/defense")
	{
		defense.GET("/statistics", s.defenseStatistics)
		defense.POST("/statistics/reset", s.resetDefenseStatistics)
	}

	s.engine.GET("/events", s.streamEvents)

	exporter := metrics.NewPrometheusExporter(s.supervisor.Metrics())
	s.engine.GET("/metrics", gin.WrapH(exporter.Handler()))
}

// Handler exposes the underlying gin.Engine as an http.Handler, for
// embedding in an http.Server or a test httptest.Server.
func (s *Server) Handler() http.Handler { return s.engine }

// ListenAndServe starts the HTTP server on addr and blocks until it stops.
func (s *Server) ListenAndServe(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
	}
}
