// Package shutdown fails every in-flight task when the process is asked to
// stop, so the orchestrator can reschedule them instead of waiting for a
// timeout.
package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/viant/worker/internal/logging"
	"github.com/viant/worker/service/executor"
	"github.com/viant/worker/service/inflight"
	"go.uber.org/zap"
)

// ReasonWorkerRestarted is reported for tasks interrupted by a shutdown.
const ReasonWorkerRestarted = "worker restarted, please resubmit the task"

// Failer reports an in-flight task as FAILED; it returns
// executor.ErrTaskNotInFlight when the task was settled by someone else.
type Failer interface {
	Fail(ctx context.Context, taskID string, reason string) error
}

// Coordinator sweeps the in-flight table on shutdown.
type Coordinator struct {
	table  *inflight.Table
	failer Failer
	logger *zap.Logger
}

// Wait blocks until one of signals arrives (SIGINT and SIGTERM by default)
// or ctx is done.
func (c *Coordinator) Wait(ctx context.Context, signals ...os.Signal) {
	if len(signals) == 0 {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	defer signal.Stop(ch)
	select {
	case sig := <-ch:
		c.logger.Info("received signal", zap.String("signal", sig.String()))
	case <-ctx.Done():
	}
}

// Watch waits for a signal, then sweeps the table and returns the number of
// failed tasks.
func (c *Coordinator) Watch(ctx context.Context, signals ...os.Signal) int {
	c.Wait(ctx, signals...)
	return c.Sweep(context.WithoutCancel(ctx))
}

// Sweep reports every in-flight task as FAILED. Tasks settled concurrently
// are skipped. It returns the number of tasks it failed.
func (c *Coordinator) Sweep(ctx context.Context) int {
	entries := c.table.Snapshot(ctx)
	if len(entries) == 0 {
		return 0
	}
	c.logger.Info("failing in-flight tasks", zap.Int("count", len(entries)))
	failed := 0
	for _, entry := range entries {
		err := c.failer.Fail(ctx, entry.ID(), ReasonWorkerRestarted)
		switch {
		case err == nil:
			failed++
		case errors.Is(err, executor.ErrTaskNotInFlight):
		default:
			// claimed but the report did not go through
			failed++
			c.logger.Error("failed to report interrupted task", zap.String("task_id", entry.ID()), zap.Error(err))
		}
	}
	return failed
}

// New creates a coordinator.
func New(table *inflight.Table, failer Failer, logger *zap.Logger) *Coordinator {
	return &Coordinator{table: table, failer: failer, logger: logging.OrNop(logger)}
}
