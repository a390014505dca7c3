package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/api/middleware"
	"github.com/jinjernot/wg-sub000/internal/api/rest"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

// Config holds the server configuration
type Config struct {
	Debug        bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Auth         middleware.AuthConfig
}

// Server wraps the ops HTTP server
type Server struct {
	config     Config
	handler    rest.Handler
	metrics    http.Handler
	httpServer *http.Server
}

// New creates a new ops server
func New(cfg Config, handler rest.Handler, metrics http.Handler) *Server {
	return &Server{
		config:  cfg,
		handler: handler,
		metrics: metrics,
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	rest.SetupRoutes(router, s.handler, s.metrics, s.config.Auth)
	return router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting ops server", zap.String("address", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down ops server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}
	return nil
}
