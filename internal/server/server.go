// Package server exposes the intake agent over HTTP: a streaming chat
// endpoint, session history management, feedback capture and stats.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/healthyoda/intake/internal/chat"
	"github.com/healthyoda/intake/internal/results"
)

// Config holds the HTTP server settings.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// ReadTimeout bounds request header reads. There is no write
	// timeout: SSE responses stay open for the length of a model reply.
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RateLimit allows this many chat requests per client IP per minute.
	RateLimit int `yaml:"rate_limit"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		ReadTimeout:     10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RateLimit:       30,
	}
}

// Server is the HTTP surface over the dialogue driver.
type Server struct {
	cfg        Config
	engine     *gin.Engine
	httpServer *http.Server
	service    *chat.Service
	recorder   *results.Recorder
	store      *results.Store
	log        zerolog.Logger
}

// New creates the server. store may be nil when persistence is off.
func New(cfg Config, service *chat.Service, recorder *results.Recorder, store *results.Store, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		service:  service,
		recorder: recorder,
		store:    store,
		log:      log,
	}
	s.setupRoutes()
	return s
}

// Start listens until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:     s.engine,
		ReadTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("http server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info().Msg("http server stopped")
	return nil
}

// Handler exposes the gin engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
