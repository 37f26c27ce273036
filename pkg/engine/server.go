package engine

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/svcmock/restdispatch/pkg/config"
	"github.com/svcmock/restdispatch/pkg/metrics"
	"github.com/svcmock/restdispatch/pkg/tracing"
)

// Server wraps a Handler behind a standard net/http server, with tracing
// middleware applied when a tracer is configured.
type Server struct {
	httpServer *http.Server
	handler    *Handler
	log        *slog.Logger
}

// NewServer builds a Server listening on cfg.Address. tracer may be nil,
// in which case requests are served without tracing middleware. registry
// may be nil, in which case no "/metrics" endpoint is mounted.
func NewServer(cfg config.ServerConfig, handler *Handler, tracer *tracing.Tracer, registry *metrics.Registry, log *slog.Logger) *Server {
	var traced http.Handler = handler
	traced = TracingMiddleware(tracer)(traced)

	mux := http.NewServeMux()
	mux.Handle("/", traced)
	if registry != nil {
		mux.Handle("/metrics", registry.Handler())
	}

	return &Server{
		handler: handler,
		log:     log,
		httpServer: &http.Server{
			Addr:              cfg.Address,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// ListenAndServe starts serving until ctx is cancelled or the listener
// fails, shutting down gracefully within a 5-second window on
// cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
