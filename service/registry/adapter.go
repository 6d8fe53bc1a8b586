package registry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/structology/conv"
	"github.com/viant/worker/model/task"
)

// Func adapts a handler returning (output, error): an error fails the task,
// a non-empty output completes it and an empty output defers it.
func Func(fn func(ctx context.Context, t *task.Task) (map[string]interface{}, error)) Handler {
	return func(ctx context.Context, t *task.Task) task.Result {
		output, err := fn(ctx, t)
		if err != nil {
			return task.Failed(err)
		}
		if len(output) == 0 {
			return task.Deferred()
		}
		return task.Completed(output)
	}
}

var converter = newConverter()

func newConverter() *conv.Converter {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	return conv.NewConverter(options)
}

// Typed binds the task input into In and converts Out back into the output
// map using its JSON field names. A nil Out defers the task.
func Typed[In any, Out any](fn func(ctx context.Context, input *In) (*Out, error)) Handler {
	return func(ctx context.Context, t *task.Task) task.Result {
		input := new(In)
		if len(t.InputData) > 0 {
			if err := converter.Convert(t.InputData, input); err != nil {
				return task.Failed(fmt.Errorf("failed to bind input of %s: %w", t.Type(), err))
			}
		}
		output, err := fn(ctx, input)
		if err != nil {
			return task.Failed(err)
		}
		if output == nil {
			return task.Deferred()
		}
		data, err := json.Marshal(output)
		if err != nil {
			return task.Failed(fmt.Errorf("failed to encode output of %s: %w", t.Type(), err))
		}
		aMap := map[string]interface{}{}
		if err = json.Unmarshal(data, &aMap); err != nil {
			return task.Failed(fmt.Errorf("output of %s is not an object: %w", t.Type(), err))
		}
		return task.Completed(aMap)
	}
}
