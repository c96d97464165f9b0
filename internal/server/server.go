package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hnrobert/equidash/internal/config"
)

type Server struct {
	cfg config.Config
	h   http.Handler
}

func New(cfg config.Config) (*Server, error) {
	app, err := newApp(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{cfg: cfg, h: app.routes()}, nil
}

func (s *Server) Handler() http.Handler { return s.h }

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
