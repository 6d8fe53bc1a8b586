package task

// Kind identifies the variant held by a Result.
type Kind int

const (
	// KindDeferred means the handler took ownership of reporting the outcome later.
	KindDeferred Kind = iota
	// KindCompleted means the handler finished synchronously with an output.
	KindCompleted
	// KindFailed means the handler failed.
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindCompleted:
		return "completed"
	case KindFailed:
		return "failed"
	default:
		return "deferred"
	}
}

// Result is the value a handler returns. The zero value is Deferred.
type Result struct {
	Kind   Kind
	Output map[string]interface{}
	Err    error
}

// Completed returns a synchronous completion result.
func Completed(output map[string]interface{}) Result {
	return Result{Kind: KindCompleted, Output: output}
}

// Deferred returns a result signalling that completion is reported out of band.
func Deferred() Result {
	return Result{Kind: KindDeferred}
}

// Failed returns a failure result.
func Failed(err error) Result {
	return Result{Kind: KindFailed, Err: err}
}

// IsDeferred reports whether the task stays in flight after the handler returns.
// A completion with an empty output is deferred as well.
func (r Result) IsDeferred() bool {
	switch r.Kind {
	case KindCompleted:
		return len(r.Output) == 0
	case KindFailed:
		return false
	}
	return true
}
