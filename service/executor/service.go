package executor

import (
	"context"
	"fmt"

	"github.com/viant/worker/internal/clock"
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/gateway"
	"github.com/viant/worker/service/inflight"
	"github.com/viant/worker/service/metrics"
	"github.com/viant/worker/service/registry"
	"github.com/viant/worker/tracing"
	"go.uber.org/zap"
)

// Listener is invoked once an outcome was sent, whether or not the report
// call succeeded.
type Listener func(t *task.Task, outcome *task.Outcome)

// Service executes tasks and reports their outcomes.
type Service struct {
	registry *registry.Registry
	table    *inflight.Table
	reporter gateway.Reporter
	workerID string
	listener Listener
	metrics  *metrics.Service
	logger   *zap.Logger
}

// Execute runs the handler for aTask. The returned error is a report failure;
// handler failures are reported as FAILED and never returned.
func (s *Service) Execute(ctx context.Context, aTask *task.Task) (err error) {
	ctx, span := tracing.StartSpan(ctx, "executor.Execute "+aTask.Type(), tracing.KindConsumer)
	defer func() { tracing.EndSpan(span, err) }()
	span.WithTask(aTask.TaskID, aTask.Type(), aTask.WorkflowInstanceID).
		WithAttributes(map[string]string{tracing.AttrWorkerID: s.workerID})

	if _, ok := s.table.Get(ctx, aTask.TaskID); !ok {
		s.logger.Debug("task no longer in flight, skipping", zap.String("task_id", aTask.TaskID))
		return nil
	}
	result := s.invoke(ctx, aTask)
	if result.IsDeferred() {
		s.logger.Debug("task deferred", zap.String("task_id", aTask.TaskID), zap.String("task_type", aTask.Type()))
		return nil
	}

	var outcome *task.Outcome
	if result.Kind == task.KindCompleted {
		outcome = task.NewCompleted(aTask, s.workerID, result.Output)
	} else {
		reason := "handler failed"
		if result.Err != nil {
			reason = result.Err.Error()
		}
		s.logger.Warn("task failed",
			zap.String("task_id", aTask.TaskID),
			zap.String("task_type", aTask.Type()),
			zap.String("reason", reason))
		outcome = task.NewFailed(aTask, s.workerID, reason)
	}

	entry, ok := s.table.Claim(ctx, aTask.TaskID)
	if !ok {
		s.logger.Debug("task already settled", zap.String("task_id", aTask.TaskID))
		return nil
	}
	return s.report(ctx, entry, outcome)
}

// Complete reports a deferred in-flight task as COMPLETED.
func (s *Service) Complete(ctx context.Context, taskID string, output map[string]interface{}) error {
	entry, ok := s.table.Claim(ctx, taskID)
	if !ok {
		return fmt.Errorf("complete %s: %w", taskID, ErrTaskNotInFlight)
	}
	return s.report(ctx, entry, task.NewCompleted(entry.Task, s.workerID, output))
}

// Fail reports an in-flight task as FAILED with reason.
func (s *Service) Fail(ctx context.Context, taskID string, reason string) error {
	entry, ok := s.table.Claim(ctx, taskID)
	if !ok {
		return fmt.Errorf("fail %s: %w", taskID, ErrTaskNotInFlight)
	}
	return s.report(ctx, entry, task.NewFailed(entry.Task, s.workerID, reason))
}

// Update reports a caller-built outcome. The status is validated before
// anything else; a matching in-flight entry is claimed, but the outcome is
// reported even when the task is not tracked locally.
func (s *Service) Update(ctx context.Context, outcome *task.Outcome) error {
	if err := outcome.Validate(); err != nil {
		return err
	}
	if outcome.WorkerID == "" {
		outcome.WorkerID = s.workerID
	}
	if entry, ok := s.table.Claim(ctx, outcome.TaskID); ok {
		if outcome.WorkflowInstanceID == "" {
			outcome.WorkflowInstanceID = entry.Task.WorkflowInstanceID
		}
		return s.report(ctx, entry, outcome)
	}
	if err := s.reporter.Report(ctx, outcome); err != nil {
		s.metrics.ObserveReportError("")
		return err
	}
	return nil
}

func (s *Service) invoke(ctx context.Context, aTask *task.Task) (result task.Result) {
	handler := s.registry.Lookup(aTask.Type())
	if handler == nil {
		return task.Failed(fmt.Errorf("%w: %s", ErrHandlerNotFound, aTask.Type()))
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("handler panic",
				zap.String("task_id", aTask.TaskID),
				zap.String("task_type", aTask.Type()),
				zap.Any("panic", r),
				zap.Stack("stack"))
			result = task.Failed(fmt.Errorf("panic: %v", r))
		}
	}()
	// handlers get a copy so the in-flight entry keeps the polled task
	handlerTask := aTask.Clone()
	ctx = context.WithValue(ctx, taskKey, handlerTask)
	ctx = context.WithValue(ctx, settlerKey, Settler(&settler{service: s, taskID: aTask.TaskID}))
	return handler(ctx, handlerTask)
}

func (s *Service) report(ctx context.Context, entry *inflight.Entry, outcome *task.Outcome) error {
	defer s.metrics.SetInFlight(s.table.Len())
	err := s.reporter.Report(ctx, outcome)
	if s.listener != nil {
		s.listener(entry.Task, outcome)
	}
	if err != nil {
		s.metrics.ObserveReportError(entry.TaskType)
		s.logger.Error("failed to report task",
			zap.String("task_id", outcome.TaskID),
			zap.String("status", string(outcome.Status)),
			zap.Error(err))
		return err
	}
	s.metrics.ObserveSettled(entry.TaskType, string(outcome.Status), clock.Since(entry.FetchedAt))
	s.logger.Info("task reported",
		zap.String("task_id", outcome.TaskID),
		zap.String("task_type", entry.TaskType),
		zap.String("status", string(outcome.Status)))
	return nil
}

// New creates an executor.
func New(reg *registry.Registry, table *inflight.Table, reporter gateway.Reporter, opts ...Option) *Service {
	s := &Service{
		registry: reg,
		table:    table,
		reporter: reporter,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
