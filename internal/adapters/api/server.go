// Package api exposes the verdict service over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/sms-spam-pilot/internal/core"
	"github.com/mikey/sms-spam-pilot/internal/ports"
	"go.uber.org/zap"
)

// VerdictService is the part of core.VerdictService the API drives
type VerdictService interface {
	Predict(ctx context.Context, body string) core.Verdict
	Refresh(ctx context.Context) (core.BatchStats, error)
	Reset(ctx context.Context) error
	Threads() []core.ThreadSummary
	Messages(address string) []core.Message
	Backend() core.Backend
	SetBackend(b core.Backend)
}

// RemoteBuilder creates a remote scoring backend for url
type RemoteBuilder func(url string) (core.Backend, error)

// Server is the HTTP front end of the verdict service
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	svc    VerdictService
	remote RemoteBuilder
	logger *zap.Logger
}

var _ ports.Server = (*Server)(nil)

// NewServer creates the API server. remote may be nil, in which case the
// remote URL cannot be changed at runtime.
func NewServer(listenAddr string, svc VerdictService, remote RemoteBuilder, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		engine: engine,
		svc:    svc,
		remote: remote,
		logger: logger,
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	engine.Use(gin.Recovery(), s.accessLog())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/predict", s.predict)
	v1.POST("/refresh", s.refresh)
	v1.GET("/threads", s.threads)
	v1.GET("/threads/:address/messages", s.messages)
	v1.DELETE("/messages", s.reset)
	v1.PUT("/settings/remote-url", s.setRemoteURL)
}

// Handler returns the HTTP handler, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("listen_address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server failed: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	return s.srv.Shutdown(ctx)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)))
	}
}
