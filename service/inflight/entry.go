package inflight

import (
	"time"

	"github.com/viant/worker/model/task"
)

// Entry is a single in-flight task.
type Entry struct {
	Task      *task.Task `json:"task"`
	TaskType  string     `json:"taskType"`
	FetchedAt time.Time  `json:"fetchedAt"`
}

// ID returns the task id the entry is keyed by.
func (e *Entry) ID() string {
	if e == nil || e.Task == nil {
		return ""
	}
	return e.Task.TaskID
}

// Age returns how long the entry has been in flight at now.
func (e *Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}
