package executor

import (
	"context"

	"github.com/viant/worker/model/task"
)

type contextKey string

const (
	taskKey    = contextKey("task")
	settlerKey = contextKey("settler")
)

// Settler completes or fails the task a handler is running for. Handlers
// returning task.Deferred() use it, possibly from another goroutine, once the
// work finishes.
type Settler interface {
	Complete(ctx context.Context, output map[string]interface{}) error
	Fail(ctx context.Context, reason string) error
}

// TaskFromContext returns the task being executed, or nil.
func TaskFromContext(ctx context.Context) *task.Task {
	value, _ := ctx.Value(taskKey).(*task.Task)
	return value
}

// SettlerFromContext returns the settler of the task being executed, or nil.
func SettlerFromContext(ctx context.Context) Settler {
	value, _ := ctx.Value(settlerKey).(Settler)
	return value
}

type settler struct {
	service *Service
	taskID  string
}

func (s *settler) Complete(ctx context.Context, output map[string]interface{}) error {
	return s.service.Complete(ctx, s.taskID, output)
}

func (s *settler) Fail(ctx context.Context, reason string) error {
	return s.service.Fail(ctx, s.taskID, reason)
}
