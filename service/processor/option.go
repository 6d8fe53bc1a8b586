package processor

import (
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/messaging"
	"go.uber.org/zap"
)

// Option customises the processor.
type Option func(*Service)

// WithMessageQueue sets the dispatch queue implementation
func WithMessageQueue(queue messaging.Queue[task.Task]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithExecutor sets the task executor
func WithExecutor(executor Executor) Option {
	return func(s *Service) {
		s.executor = executor
	}
}

// WithWorkers sets the number of worker goroutines
func WithWorkers(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.config.WorkerCount = count
		}
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

// WithConfig sets the configuration for the service
func WithConfig(config Config) Option {
	return func(s *Service) {
		s.config = config
	}
}
