package executor

import "errors"

var (
	// ErrHandlerNotFound is the reason a task fails when its type has no
	// registered handler.
	ErrHandlerNotFound = errors.New("no handler registered for task type")

	// ErrTaskNotInFlight is returned when settling a task that was already
	// reported or was never fetched by this worker.
	ErrTaskNotInFlight = errors.New("task is not in flight")
)
