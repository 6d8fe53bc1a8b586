// Package metrics exposes worker counters through a dedicated prometheus
// registry. A nil *Service is valid and records nothing.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Poll results.
const (
	PollOK      = "ok"
	PollEmpty   = "empty"
	PollError   = "error"
	PollSkipped = "skipped"
)

// Config controls the metrics endpoint.
type Config struct {
	Address   string `json:"address,omitempty" yaml:"address,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// Service holds the worker metrics.
type Service struct {
	registry     *prometheus.Registry
	polls        *prometheus.CounterVec
	polled       *prometheus.CounterVec
	settled      *prometheus.CounterVec
	reportErrors *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	server       *http.Server
}

// ObservePoll records a poll attempt and the number of tasks it returned.
func (s *Service) ObservePoll(taskType, result string, count int) {
	if s == nil {
		return
	}
	s.polls.WithLabelValues(taskType, result).Inc()
	if count > 0 {
		s.polled.WithLabelValues(taskType).Add(float64(count))
	}
}

// ObserveSettled records a reported outcome and the handler duration.
func (s *Service) ObserveSettled(taskType, status string, elapsed time.Duration) {
	if s == nil {
		return
	}
	s.settled.WithLabelValues(taskType, status).Inc()
	s.duration.WithLabelValues(taskType).Observe(elapsed.Seconds())
}

// ObserveReportError records a failed report call.
func (s *Service) ObserveReportError(taskType string) {
	if s == nil {
		return
	}
	s.reportErrors.WithLabelValues(taskType).Inc()
}

// SetInFlight sets the in-flight task gauge.
func (s *Service) SetInFlight(n int) {
	if s == nil {
		return
	}
	s.inFlight.Set(float64(n))
}

// Registry returns the underlying registry.
func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

// Handler returns the HTTP handler serving the registry.
func (s *Service) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Serve starts the metrics endpoint in the background.
func (s *Service) Serve(cfg Config, logger *zap.Logger) {
	if cfg.Address == "" {
		return
	}
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, s.Handler())
	s.server = &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics listening", zap.String("address", cfg.Address), zap.String("path", path))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()
}

// Shutdown stops the metrics endpoint, if started.
func (s *Service) Shutdown(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}

// New creates metrics registered on a fresh registry.
func New(namespace string) *Service {
	s := &Service{
		registry: prometheus.NewRegistry(),
		polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Poll calls per task type and result.",
		}, []string{"task_type", "result"}),
		polled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_polled_total",
			Help:      "Tasks received from poll calls.",
		}, []string{"task_type"}),
		settled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_settled_total",
			Help:      "Task outcomes reported per status.",
		}, []string{"task_type", "status"}),
		reportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_errors_total",
			Help:      "Report calls that failed.",
		}, []string{"task_type"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Handler execution time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task_type"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight",
			Help:      "Tasks fetched and not yet reported.",
		}),
	}
	s.registry.MustRegister(s.polls, s.polled, s.settled, s.reportErrors, s.duration, s.inFlight)
	s.registry.MustRegister(prometheus.NewGoCollector())
	return s
}
