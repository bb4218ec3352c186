// Package server exposes the operational surface of the breaker
// registry over HTTP: health, Prometheus metrics, a JSON snapshot of
// every breaker, and an administrative reset endpoint. It is
// presentation only; none of the breaker semantics live here.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fusegate/fusegate/internal/api/middleware"
	"github.com/fusegate/fusegate/internal/logging"
	"github.com/fusegate/fusegate/internal/resilience"
)

// Server wraps the admin HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	registry *resilience.Registry
	logger   *logging.Logger
	http     *http.Server
}

// New creates the admin server around the given registry. The
// gatherer serves /metrics; pass prometheus.DefaultGatherer in
// production.
func New(registry *resilience.Registry, logger *logging.Logger, gatherer prometheus.Gatherer) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))

	s := &Server{
		router:   router,
		registry: registry,
		logger:   logger,
	}

	router.GET("/health", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/breakers", s.handleSnapshot)
	router.POST("/breakers/:name/reset", s.handleReset)

	return s
}

// Router returns the underlying gin engine, for tests.
func (s *Server) Router() http.Handler { return s.router }

// Run starts the server and blocks until it stops.
func (s *Server) Run(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info("admin server listening", zap.String("addr", addr))

	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type breakerStatus struct {
	State              string  `json:"state"`
	FailureCount       int     `json:"failure_count"`
	SuccessCount       int     `json:"success_count"`
	TotalCalls         int     `json:"total_calls"`
	FailureRatePercent float64 `json:"failure_rate_percent"`
}

func (s *Server) handleSnapshot(c *gin.Context) {
	snap := s.registry.Snapshot()

	out := make(map[string]breakerStatus, len(snap))
	for name, m := range snap {
		out[name] = breakerStatus{
			State:              m.State.String(),
			FailureCount:       m.FailureCount,
			SuccessCount:       m.SuccessCount,
			TotalCalls:         m.TotalCalls,
			FailureRatePercent: m.FailureRatePercent,
		}
	}
	c.JSON(http.StatusOK, gin.H{"breakers": out})
}

func (s *Server) handleReset(c *gin.Context) {
	name := c.Param("name")

	if err := s.registry.Reset(name); err != nil {
		if errors.Is(err, resilience.ErrUnknownBreaker) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("breaker reset",
		zap.String("breaker", name),
		zap.String("request_id", c.GetString("request_id")),
	)
	c.JSON(http.StatusOK, gin.H{"breaker": name, "state": resilience.StateClosed.String()})
}

// Addr formats a host/port pair for Run.
func Addr(host, port string) string {
	return net.JoinHostPort(host, port)
}
