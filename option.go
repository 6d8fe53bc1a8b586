package worker

import (
	"os"

	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/dao"
	"github.com/viant/worker/service/executor"
	"github.com/viant/worker/service/gateway"
	"github.com/viant/worker/service/inflight"
	"github.com/viant/worker/service/messaging"
	"github.com/viant/worker/service/metrics"
	"github.com/viant/worker/tracing"
	"go.uber.org/zap"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Option customises the Service.
type Option func(s *Service)

// WithConfig sets the worker configuration
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithLogger sets the logger shared by all components
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithWorkerID overrides the configured worker id
func WithWorkerID(workerID string) Option {
	return func(s *Service) {
		s.workerID = workerID
	}
}

// WithGateway replaces the HTTP orchestrator client
func WithGateway(service gateway.Service) Option {
	return func(s *Service) {
		s.gateway = service
	}
}

// WithQueue sets the dispatch queue
func WithQueue(queue messaging.Queue[task.Task]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithJournal sets the persistent in-flight journal
func WithJournal(journal dao.Service[string, inflight.Entry]) Option {
	return func(s *Service) {
		s.journal = journal
	}
}

// WithMetrics sets the metrics registry
func WithMetrics(m *metrics.Service) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithListener registers a callback invoked after every reported outcome
func WithListener(listener executor.Listener) Option {
	return func(s *Service) {
		s.listener = listener
	}
}

// WithSignals overrides the signals that trigger shutdown
func WithSignals(signals ...os.Signal) Option {
	return func(s *Service) {
		s.signals = signals
	}
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile is empty the
// stdout exporter is used; otherwise spans are written to the supplied file path. The first
// successful initialisation wins. An initialisation error is returned by New.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		if err := tracing.Init(serviceName, serviceVersion, outputFile); err != nil {
			s.tracingErr = err
		}
	}
}

// WithTracingExporter configures OpenTelemetry tracing using a custom SpanExporter, for
// example OTLP, Jaeger or Zipkin.
func WithTracingExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) Option {
	return func(s *Service) {
		if err := tracing.InitWithExporter(serviceName, serviceVersion, exporter); err != nil {
			s.tracingErr = err
		}
	}
}
