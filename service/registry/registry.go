// Package registry maps task types to handlers.
package registry

import (
	"context"
	"sort"
	"sync"

	"github.com/viant/worker/model/task"
)

// Handler processes a single task.
type Handler func(ctx context.Context, t *task.Task) task.Result

// Registry provides handler lookup by task type.
type Registry struct {
	handlers map[string]Handler
	mux      sync.RWMutex
}

// Register inserts or overwrites the handler for taskType.
func (r *Registry) Register(taskType string, handler Handler) {
	r.mux.Lock()
	defer r.mux.Unlock()
	r.handlers[taskType] = handler
}

// Lookup returns a handler by task type or nil.
func (r *Registry) Lookup(taskType string) Handler {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return r.handlers[taskType]
}

// Types returns the registered task types in sorted order.
func (r *Registry) Types() []string {
	r.mux.RLock()
	defer r.mux.RUnlock()
	ret := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Len returns the number of registered handlers.
func (r *Registry) Len() int {
	r.mux.RLock()
	defer r.mux.RUnlock()
	return len(r.handlers)
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}
