package poller

import (
	"github.com/viant/worker/service/metrics"
	"go.uber.org/zap"
)

// Option customises the poller.
type Option func(*Service)

// WithConfig sets the poller configuration.
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Service) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}
