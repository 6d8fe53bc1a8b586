package task

// Task represents a single task instance returned by a poll call.
type Task struct {
	TaskID               string                 `json:"taskId"`
	WorkflowInstanceID   string                 `json:"workflowInstanceId"`
	TaskType             string                 `json:"taskType,omitempty"`
	TaskDefName          string                 `json:"taskDefName,omitempty"`
	ReferenceTaskName    string                 `json:"referenceTaskName,omitempty"`
	WorkflowType         string                 `json:"workflowType,omitempty"`
	Domain               string                 `json:"domain,omitempty"`
	Status               string                 `json:"status,omitempty"`
	WorkerID             string                 `json:"workerId,omitempty"`
	RetryCount           int                    `json:"retryCount,omitempty"`
	PollCount            int                    `json:"pollCount,omitempty"`
	CallbackAfterSeconds int64                  `json:"callbackAfterSeconds,omitempty"`
	InputData            map[string]interface{} `json:"inputData,omitempty"`
}

// Type returns the task type name, falling back to the definition name.
func (t *Task) Type() string {
	if t.TaskType != "" {
		return t.TaskType
	}
	return t.TaskDefName
}

// Input returns an input value by name
func (t *Task) Input(name string) (interface{}, bool) {
	if t.InputData == nil {
		return nil, false
	}
	v, ok := t.InputData[name]
	return v, ok
}

// Clone returns a shallow copy with its own input map.
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	ret := *t
	if t.InputData != nil {
		ret.InputData = make(map[string]interface{}, len(t.InputData))
		for k, v := range t.InputData {
			ret.InputData[k] = v
		}
	}
	return &ret
}
