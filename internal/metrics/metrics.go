// Package metrics exports fetch outcomes as Prometheus counters.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "hourwatch"

	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
)

// Recorder counts processed messages and failures. It satisfies
// fetch.Recorder.
type Recorder struct {
	processed prometheus.Counter
	failures  *prometheus.CounterVec
}

// NewRecorder registers the hourwatch counters with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		processed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Messages reduced to a summary.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed list (batch) or message (item) fetches.",
		}, []string{"scope"}),
	}
	for _, c := range []prometheus.Collector{r.processed, r.failures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return r, nil
}

// Processed adds n to the processed counter.
func (r *Recorder) Processed(n int) {
	if n > 0 {
		r.processed.Add(float64(n))
	}
}

// Failure increments the failure counter for scope.
func (r *Recorder) Failure(scope string) {
	r.failures.WithLabelValues(scope).Inc()
}

// Server serves /metrics on a dedicated address.
type Server struct {
	httpServer *http.Server
}

// NewServer builds a metrics server for gatherer. It does not listen until
// Start is called.
func NewServer(addr string, gatherer prometheus.Gatherer) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
		},
	}
}

// Handler exposes the server's mux.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Start blocks serving metrics until Shutdown is called.
func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown metrics server: %w", err)
	}
	return nil
}
