package executor

import (
	"github.com/viant/worker/service/metrics"
	"go.uber.org/zap"
)

// Option is used to customise the executor instance.
type Option func(*Service)

// WithListener sets a callback invoked after every reported outcome.
func WithListener(l Listener) Option {
	return func(s *Service) {
		s.listener = l
	}
}

// WithWorkerID sets the worker id stamped on outcomes.
func WithWorkerID(workerID string) Option {
	return func(s *Service) {
		s.workerID = workerID
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
