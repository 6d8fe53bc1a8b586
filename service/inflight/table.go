package inflight

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/viant/worker/internal/clock"
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/dao"
	"github.com/viant/worker/service/dao/store"
	"go.uber.org/zap"
)

// Table is the in-flight task table keyed by task id.
type Table struct {
	store   *store.MemoryStore[string, Entry]
	journal dao.Service[string, Entry]
	logger  *zap.Logger
}

// Add records a freshly polled task. A redelivered task id overwrites the
// previous entry.
func (t *Table) Add(ctx context.Context, aTask *task.Task) *Entry {
	entry := &Entry{Task: aTask, TaskType: aTask.Type(), FetchedAt: clock.Now()}
	_ = t.store.Save(ctx, entry)
	if t.journal != nil {
		if err := t.journal.Save(ctx, entry); err != nil {
			t.logger.Warn("failed to journal in-flight task", zap.String("task_id", aTask.TaskID), zap.Error(err))
		}
	}
	return entry
}

// Claim atomically removes the entry. Only the first caller for a task id
// gets ok=true; that caller is responsible for reporting the task.
func (t *Table) Claim(ctx context.Context, taskID string) (*Entry, bool) {
	entry, err := t.store.Take(ctx, taskID)
	if err != nil {
		return nil, false
	}
	if t.journal != nil {
		if err := t.journal.Delete(ctx, taskID); err != nil && !errors.Is(err, dao.ErrNotFound) {
			t.logger.Warn("failed to remove journaled task", zap.String("task_id", taskID), zap.Error(err))
		}
	}
	return entry, true
}

// Get returns the entry without removing it.
func (t *Table) Get(ctx context.Context, taskID string) (*Entry, bool) {
	entry, err := t.store.Load(ctx, taskID)
	if err != nil {
		return nil, false
	}
	return entry, true
}

// Snapshot returns a copy of all entries ordered by fetch time.
func (t *Table) Snapshot(ctx context.Context) []*Entry {
	entries, _ := t.store.List(ctx)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FetchedAt.Before(entries[j].FetchedAt)
	})
	return entries
}

// Stale returns entries that have been in flight longer than olderThan.
func (t *Table) Stale(ctx context.Context, olderThan time.Duration) []*Entry {
	now := clock.Now()
	var ret []*Entry
	for _, entry := range t.Snapshot(ctx) {
		if entry.Age(now) > olderThan {
			ret = append(ret, entry)
		}
	}
	return ret
}

// Len returns the number of in-flight tasks.
func (t *Table) Len() int {
	return t.store.Len()
}

// Restore loads entries left in the journal by a previous process. It
// returns the number of restored entries.
func (t *Table) Restore(ctx context.Context) (int, error) {
	if t.journal == nil {
		return 0, nil
	}
	entries, err := t.journal.List(ctx)
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, entry := range entries {
		if entry.ID() == "" {
			continue
		}
		if err = t.store.Save(ctx, entry); err != nil {
			return restored, err
		}
		restored++
	}
	return restored, nil
}

// New creates an empty table.
func New(opts ...Option) *Table {
	ret := &Table{
		store:  store.NewMemoryStore[string, Entry](func(e *Entry) string { return e.ID() }),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
