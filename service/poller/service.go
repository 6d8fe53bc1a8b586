// Package poller runs the polling loop: for every registered task type it
// fetches a batch of work, records it as in flight and hands it to the
// processor without waiting for execution.
package poller

import (
	"context"
	"time"

	"github.com/viant/worker/internal/clock"
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/inflight"
	"github.com/viant/worker/service/metrics"
	"github.com/viant/worker/service/registry"
	"go.uber.org/zap"
)

// Config controls the polling loop.
type Config struct {
	WorkerID           string
	Interval           time.Duration
	BatchSize          int
	Domain             string
	StaleAfter         time.Duration
	StaleCheckInterval time.Duration
}

// DefaultConfig returns the default polling configuration.
func DefaultConfig() Config {
	return Config{
		Interval:           500 * time.Millisecond,
		BatchSize:          1,
		StaleAfter:         24 * time.Hour,
		StaleCheckInterval: time.Hour,
	}
}

// Source fetches tasks from the orchestrator.
type Source interface {
	Poll(ctx context.Context, taskType, workerID string, count int, domain string) ([]*task.Task, error)
}

// Dispatcher accepts tasks for execution.
type Dispatcher interface {
	Submit(ctx context.Context, t *task.Task) error
	Available() int
}

// Service is the polling loop.
type Service struct {
	config     Config
	source     Source
	registry   *registry.Registry
	table      *inflight.Table
	dispatcher Dispatcher
	metrics    *metrics.Service
	logger     *zap.Logger
	lastStale  time.Time
}

// Run polls until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("polling started",
		zap.String("worker_id", s.config.WorkerID),
		zap.Strings("task_types", s.registry.Types()),
		zap.Duration("interval", s.config.Interval))
	defer s.logger.Info("polling stopped")
	for {
		types := s.registry.Types()
		if len(types) == 0 && !s.sleep(ctx) {
			return nil
		}
		for _, taskType := range types {
			s.pollType(ctx, taskType)
			if !s.sleep(ctx) {
				return nil
			}
		}
		s.checkStale(ctx)
	}
}

// PollOnce polls every registered type once without sleeping and returns the
// number of dispatched tasks.
func (s *Service) PollOnce(ctx context.Context) int {
	dispatched := 0
	for _, taskType := range s.registry.Types() {
		dispatched += s.pollType(ctx, taskType)
	}
	return dispatched
}

func (s *Service) pollType(ctx context.Context, taskType string) int {
	available := s.dispatcher.Available()
	if available == 0 {
		s.metrics.ObservePoll(taskType, metrics.PollSkipped, 0)
		s.logger.Debug("no free workers, skipping poll", zap.String("task_type", taskType))
		return 0
	}
	count := s.config.BatchSize
	if count > available {
		count = available
	}
	tasks, err := s.source.Poll(ctx, taskType, s.config.WorkerID, count, s.config.Domain)
	if err != nil {
		if ctx.Err() != nil {
			return 0
		}
		s.metrics.ObservePoll(taskType, metrics.PollError, 0)
		s.logger.Warn("poll failed", zap.String("task_type", taskType), zap.Error(err))
		return 0
	}
	if len(tasks) == 0 {
		s.metrics.ObservePoll(taskType, metrics.PollEmpty, 0)
		return 0
	}
	s.metrics.ObservePoll(taskType, metrics.PollOK, len(tasks))
	s.logger.Info("polled tasks", zap.String("task_type", taskType), zap.Int("count", len(tasks)))

	dispatched := 0
	for _, aTask := range tasks {
		if aTask == nil || aTask.TaskID == "" {
			continue
		}
		if aTask.TaskType == "" && aTask.TaskDefName == "" {
			aTask.TaskType = taskType
		}
		s.table.Add(ctx, aTask)
		s.metrics.SetInFlight(s.table.Len())
		if err := s.dispatcher.Submit(ctx, aTask); err != nil {
			// the entry stays in flight and is failed by the shutdown sweep
			s.logger.Warn("failed to dispatch task", zap.String("task_id", aTask.TaskID), zap.Error(err))
			continue
		}
		dispatched++
	}
	return dispatched
}

func (s *Service) checkStale(ctx context.Context) {
	if s.config.StaleAfter <= 0 {
		return
	}
	now := clock.Now()
	if !s.lastStale.IsZero() && now.Sub(s.lastStale) < s.config.StaleCheckInterval {
		return
	}
	s.lastStale = now
	for _, entry := range s.table.Stale(ctx, s.config.StaleAfter) {
		s.logger.Warn("task in flight for too long",
			zap.String("task_id", entry.ID()),
			zap.String("task_type", entry.TaskType),
			zap.Time("fetched_at", entry.FetchedAt))
	}
}

func (s *Service) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.config.Interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// New creates the polling loop.
func New(source Source, reg *registry.Registry, table *inflight.Table, dispatcher Dispatcher, opts ...Option) *Service {
	s := &Service{
		config:     DefaultConfig(),
		source:     source,
		registry:   reg,
		table:      table,
		dispatcher: dispatcher,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.BatchSize <= 0 {
		s.config.BatchSize = 1
	}
	if s.config.Interval <= 0 {
		s.config.Interval = DefaultConfig().Interval
	}
	if s.config.StaleCheckInterval <= 0 {
		s.config.StaleCheckInterval = DefaultConfig().StaleCheckInterval
	}
	return s
}
