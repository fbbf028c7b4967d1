package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server exposes the process's registered collectors on /metrics, matching
// the teacher's pkg/metrics.Server shape.
type Server struct {
	server *http.Server
	log    *logrus.Logger
}

// NewServer builds a Server bound to the given port (":" + port).
func NewServer(port string, log *logrus.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		server: &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: mux},
		log:    log,
	}
}

// StartAsync starts the HTTP listener in a background goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Error("metrics server stopped unexpectedly")
		}
	}()
}

// Stop gracefully shuts down the HTTP listener.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
