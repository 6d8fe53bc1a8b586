package worker

import (
	"context"
	"fmt"
	"os"

	"github.com/viant/scy/cred"
	"github.com/viant/worker/internal/idgen"
	"github.com/viant/worker/internal/logging"
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/dao"
	"github.com/viant/worker/service/executor"
	"github.com/viant/worker/service/gateway"
	"github.com/viant/worker/service/inflight"
	jfs "github.com/viant/worker/service/inflight/fs"
	"github.com/viant/worker/service/messaging"
	mmemory "github.com/viant/worker/service/messaging/memory"
	"github.com/viant/worker/service/metrics"
	"github.com/viant/worker/service/poller"
	"github.com/viant/worker/service/processor"
	"github.com/viant/worker/service/registry"
	"github.com/viant/worker/service/secret"
	"github.com/viant/worker/service/shutdown"
	"github.com/viant/worker/service/storage"
	"go.uber.org/zap"
)

// ErrTaskNotInFlight is returned when settling a task this worker does not hold.
var ErrTaskNotInFlight = executor.ErrTaskNotInFlight

// Service is the worker: it owns the handler registry, the in-flight table
// and the components that poll, execute and report.
type Service struct {
	config      *Config
	workerID    string
	logger      *zap.Logger
	registry    *registry.Registry
	table       *inflight.Table
	journal     dao.Service[string, inflight.Entry]
	gateway     gateway.Service
	queue       messaging.Queue[task.Task]
	executor    *executor.Service
	processor   *processor.Service
	poller      *poller.Service
	coordinator *shutdown.Coordinator
	metrics     *metrics.Service
	storage     *storage.Service
	secrets     *secret.Service
	listener    executor.Listener
	signals     []os.Signal
	tracingErr  error
}

// Register sets the handler for taskType. Register handlers before Run.
func (s *Service) Register(taskType string, handler registry.Handler) {
	s.registry.Register(taskType, handler)
}

// RegisterFunc registers a handler returning (output, error); an empty output
// leaves the task in flight for later settlement.
func (s *Service) RegisterFunc(taskType string, fn func(ctx context.Context, t *task.Task) (map[string]interface{}, error)) {
	s.registry.Register(taskType, registry.Func(fn))
}

// RegisterBlock registers the task definition derived from block, announces
// the block to the registration endpoint and, when handler is not nil,
// registers it for the block name.
func (s *Service) RegisterBlock(ctx context.Context, block task.Block, handler registry.Handler, opts ...task.DefinitionOption) error {
	name := block.Name()
	if name == "" {
		return fmt.Errorf("block name was empty")
	}
	if err := s.gateway.RegisterTaskDefinitions(ctx, task.NewDefinition(block, opts...)); err != nil {
		return err
	}
	block.SetSource(s.workerID)
	if err := s.gateway.RegisterCapability(ctx, block); err != nil {
		return err
	}
	if handler != nil {
		s.registry.Register(name, handler)
	}
	s.logger.Info("registered block", zap.String("block", name))
	return nil
}

// UpdateTask reports an outcome built by the caller. Only COMPLETED and
// FAILED are accepted; anything else fails before any network call.
func (s *Service) UpdateTask(ctx context.Context, outcome *task.Outcome) error {
	return s.executor.Update(ctx, outcome)
}

// Complete reports a deferred task as COMPLETED.
func (s *Service) Complete(ctx context.Context, taskID string, output map[string]interface{}) error {
	return s.executor.Complete(ctx, taskID, output)
}

// Fail reports a deferred task as FAILED.
func (s *Service) Fail(ctx context.Context, taskID string, reason string) error {
	return s.executor.Fail(ctx, taskID, reason)
}

// Recover fails tasks journaled by a previous process that never reported
// them. It returns the number of failed tasks.
func (s *Service) Recover(ctx context.Context) (int, error) {
	restored, err := s.table.Restore(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to restore journal: %w", err)
	}
	if restored == 0 {
		return 0, nil
	}
	s.logger.Warn("failing tasks left by previous run", zap.Int("count", restored))
	return s.coordinator.Sweep(ctx), nil
}

// Run polls and executes tasks until a shutdown signal arrives or ctx is
// done. It then stops polling, fails every in-flight task and waits up to
// ShutdownTimeout for running handlers.
func (s *Service) Run(ctx context.Context) error {
	if _, err := s.Recover(ctx); err != nil {
		s.logger.Error("recovery failed", zap.Error(err))
	}
	if err := s.processor.Start(ctx); err != nil {
		return err
	}
	s.metrics.Serve(s.config.Metrics, s.logger)

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	polling := make(chan error, 1)
	go func() { polling <- s.poller.Run(pollCtx) }()

	s.coordinator.Wait(ctx, s.signals...)
	stopPolling()
	if err := <-polling; err != nil {
		s.logger.Error("poller stopped with error", zap.Error(err))
	}
	_ = s.queue.Close()

	sweepCtx := context.WithoutCancel(ctx)
	failed := s.coordinator.Sweep(sweepCtx)
	s.logger.Info("shutdown sweep done", zap.Int("failed", failed))

	shutdownCtx, cancel := context.WithTimeout(sweepCtx, s.config.ShutdownTimeout)
	defer cancel()
	err := s.processor.Shutdown(shutdownCtx)
	if mErr := s.metrics.Shutdown(shutdownCtx); mErr != nil {
		s.logger.Warn("metrics shutdown", zap.Error(mErr))
	}
	if err != nil {
		return fmt.Errorf("handlers still running after %s: %w", s.config.ShutdownTimeout, err)
	}
	return nil
}

// WorkerID returns the id reported with every outcome.
func (s *Service) WorkerID() string { return s.workerID }

// InFlight returns the number of tasks fetched and not yet reported.
func (s *Service) InFlight() int { return s.table.Len() }

// Registry returns the handler registry.
func (s *Service) Registry() *registry.Registry { return s.registry }

// Storage returns the object storage helper.
func (s *Service) Storage() *storage.Service { return s.storage }

// Metrics returns the metrics registry.
func (s *Service) Metrics() *metrics.Service { return s.metrics }

func (s *Service) init(ctx context.Context, options []Option) error {
	for _, option := range options {
		option(s)
	}
	if s.tracingErr != nil {
		return fmt.Errorf("failed to init tracing: %w", s.tracingErr)
	}
	if s.config == nil {
		s.config = DefaultConfig()
	}
	s.config.Init()
	if err := s.config.Validate(); err != nil {
		return err
	}
	s.logger = logging.OrNop(s.logger)
	if s.workerID == "" {
		s.workerID = s.config.WorkerID
	}
	if s.workerID == "" {
		s.workerID = idgen.WorkerID()
	}
	s.logger = s.logger.With(zap.String("worker_id", s.workerID))
	s.secrets = secret.New()
	s.storage = storage.New(s.config.Storage)
	if s.metrics == nil {
		s.metrics = metrics.New(s.config.Metrics.Namespace)
	}
	if err := s.ensureGateway(ctx); err != nil {
		return err
	}
	if s.journal == nil && s.config.JournalURL != "" {
		journal, err := jfs.New(ctx, s.config.JournalURL, s.logger)
		if err != nil {
			return err
		}
		s.journal = journal
	}
	tableOptions := []inflight.Option{inflight.WithLogger(s.logger)}
	if s.journal != nil {
		tableOptions = append(tableOptions, inflight.WithJournal(s.journal))
	}
	s.table = inflight.New(tableOptions...)
	if s.queue == nil {
		s.queue = mmemory.NewQueue[task.Task](mmemory.Config{QueueBuffer: s.config.QueueBuffer})
	}
	s.executor = executor.New(s.registry, s.table, s.gateway,
		executor.WithWorkerID(s.workerID),
		executor.WithListener(s.listener),
		executor.WithMetrics(s.metrics),
		executor.WithLogger(s.logger))
	var err error
	if s.processor, err = processor.New(
		processor.WithExecutor(s.executor),
		processor.WithMessageQueue(s.queue),
		processor.WithWorkers(s.config.Concurrency),
		processor.WithLogger(s.logger)); err != nil {
		return err
	}
	s.poller = poller.New(s.gateway, s.registry, s.table, s.processor,
		poller.WithConfig(poller.Config{
			WorkerID:   s.workerID,
			Interval:   s.config.PollInterval,
			BatchSize:  s.config.BatchSize,
			Domain:     s.config.Domain,
			StaleAfter: s.config.StaleAfter,
		}),
		poller.WithMetrics(s.metrics),
		poller.WithLogger(s.logger))
	s.coordinator = shutdown.New(s.table, s.executor, s.logger)
	return nil
}

func (s *Service) ensureGateway(ctx context.Context) error {
	if s.gateway != nil {
		return nil
	}
	options := []gateway.Option{gateway.WithTimeout(s.config.HTTPTimeout), gateway.WithLogger(s.logger)}
	if auth := s.config.Auth; auth != nil {
		basic := &cred.Basic{Username: auth.Username, Password: auth.Password}
		if auth.SecretURL != "" {
			var err error
			if basic, err = s.secrets.Basic(ctx, auth.SecretURL, auth.Key); err != nil {
				return err
			}
		}
		options = append(options, gateway.WithBasicAuth(basic))
	}
	token := s.config.RegistrationToken
	if ref := s.config.RegistrationTokenSecret; ref != nil && ref.URL != "" {
		var err error
		if token, err = s.secrets.Token(ctx, ref.URL, ref.Key); err != nil {
			return err
		}
	}
	options = append(options, gateway.WithRegistration(s.config.RegistrationURL, token))
	s.gateway = gateway.New(s.config.BaseURL, options...)
	return nil
}

// New creates a worker. Secrets and the journal are loaded with ctx.
func New(ctx context.Context, options ...Option) (*Service, error) {
	ret := &Service{registry: registry.New()}
	if err := ret.init(ctx, options); err != nil {
		return nil, err
	}
	return ret, nil
}
