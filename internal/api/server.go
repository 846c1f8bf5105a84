package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/aegis/momentum/pkg/config"
	"github.com/wonny/aegis/momentum/pkg/logger"
)

// DefaultShutdownTimeout bounds how long in-flight run lookups may drain
const DefaultShutdownTimeout = 10 * time.Second

// Server serves the runs API over one run store
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer      *http.Server
	logger          *logger.Logger
	config          *config.Config
	store           string // --store 값 (sqlite:<path> | postgres)
	scheduled       bool   // 백테스트 스케줄러 동작 여부
	shutdownTimeout time.Duration
}

// New creates the runs API server. store names the run store for logs.
func New(cfg *config.Config, log *logger.Logger, router http.Handler, store string, scheduled bool) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:          log.WithStage("api"),
		config:          cfg,
		store:           store,
		scheduled:       scheduled,
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port":       s.config.Port,
		"env":        s.config.Env,
		"store":      s.store,
		"rate_limit": s.config.RateLimit,
		"scheduler":  s.scheduled,
	}).Info("Starting runs API")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve runs API: %w", err)
	}

	return nil
}

// Run serves until ctx is cancelled, then drains for up to the shutdown timeout
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.WithField("store", s.store).Info("Shutting down runs API")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown runs API (store %s): %w", s.store, err)
	}

	return nil
}
