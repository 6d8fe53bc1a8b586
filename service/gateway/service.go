package gateway

import (
	"context"

	"github.com/viant/worker/model/task"
)

// Reporter sends a task outcome to the orchestrator.
type Reporter interface {
	Report(ctx context.Context, outcome *task.Outcome) error
}

// Service represents the remote task service.
type Service interface {
	Reporter

	// Poll fetches up to count tasks of taskType; domain is optional.
	Poll(ctx context.Context, taskType, workerID string, count int, domain string) ([]*task.Task, error)

	// RegisterTaskDefinitions registers task definitions in one call.
	RegisterTaskDefinitions(ctx context.Context, definitions ...*task.Definition) error

	// RegisterCapability announces a capability descriptor to the registration endpoint.
	RegisterCapability(ctx context.Context, block task.Block) error
}
