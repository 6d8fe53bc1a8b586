package task

import (
	"errors"
	"fmt"
)

// Status represents a terminal task status accepted by the orchestrator.
type Status string

const (
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// ErrInvalidStatus is returned when an outcome carries a status other than
// COMPLETED or FAILED.
var ErrInvalidStatus = errors.New("status must be COMPLETED or FAILED")

// IsValid reports whether the status can be sent to the orchestrator.
func (s Status) IsValid() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Outcome is the body of a task update call.
type Outcome struct {
	WorkflowInstanceID    string                 `json:"workflowInstanceId"`
	TaskID                string                 `json:"taskId"`
	Status                Status                 `json:"status"`
	WorkerID              string                 `json:"workerId,omitempty"`
	OutputData            map[string]interface{} `json:"outputData,omitempty"`
	ReasonForIncompletion string                 `json:"reasonForIncompletion,omitempty"`
	CallbackAfterSeconds  int64                  `json:"callbackAfterSeconds,omitempty"`
}

// Validate checks that the outcome can be reported.
func (o *Outcome) Validate() error {
	if o == nil {
		return fmt.Errorf("outcome was nil")
	}
	if !o.Status.IsValid() {
		return fmt.Errorf("invalid status %q: %w", o.Status, ErrInvalidStatus)
	}
	if o.TaskID == "" {
		return fmt.Errorf("taskId was empty")
	}
	return nil
}

// NewCompleted creates a COMPLETED outcome for the supplied task.
func NewCompleted(t *Task, workerID string, output map[string]interface{}) *Outcome {
	return &Outcome{
		WorkflowInstanceID: t.WorkflowInstanceID,
		TaskID:             t.TaskID,
		Status:             StatusCompleted,
		WorkerID:           workerID,
		OutputData:         output,
	}
}

// NewFailed creates a FAILED outcome whose output carries success=false and
// the reason as errMsg.
func NewFailed(t *Task, workerID string, reason string) *Outcome {
	return &Outcome{
		WorkflowInstanceID: t.WorkflowInstanceID,
		TaskID:             t.TaskID,
		Status:             StatusFailed,
		WorkerID:           workerID,
		OutputData: map[string]interface{}{
			"success": false,
			"errMsg":  reason,
		},
		ReasonForIncompletion: reason,
	}
}
