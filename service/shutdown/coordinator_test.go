package shutdown

import (
	"context"
	"errors"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/executor"
	"github.com/viant/worker/service/inflight"
	"github.com/viant/worker/service/registry"
)

type recorder struct {
	mu       sync.Mutex
	outcomes []*task.Outcome
	err      error
}

func (r *recorder) Report(_ context.Context, outcome *task.Outcome) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
	return r.err
}

func newCoordinator(rec *recorder) (*Coordinator, *inflight.Table, *executor.Service) {
	table := inflight.New()
	exec := executor.New(registry.New(), table, rec, executor.WithWorkerID("worker-1"))
	return New(table, exec, nil), table, exec
}

func TestCoordinator_Sweep(t *testing.T) {
	testCases := []struct {
		name      string
		taskIDs   []string
		settled   []string
		reportErr error
		expect    int
	}{
		{name: "empty table"},
		{name: "two in flight", taskIDs: []string{"t1", "t2"}, expect: 2},
		{name: "settled concurrently", taskIDs: []string{"t1", "t2", "t3"}, settled: []string{"t2"}, expect: 2},
		{name: "report failure still counted", taskIDs: []string{"t1"}, reportErr: errors.New("down"), expect: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			rec := &recorder{err: tc.reportErr}
			coordinator, table, exec := newCoordinator(rec)
			for _, id := range tc.taskIDs {
				table.Add(ctx, &task.Task{TaskID: id, WorkflowInstanceID: "wf-" + id, TaskType: "echo"})
			}
			for _, id := range tc.settled {
				require.NoError(t, exec.Complete(ctx, id, map[string]interface{}{"success": true}))
			}
			rec.outcomes = nil

			assert.Equal(t, tc.expect, coordinator.Sweep(ctx))
			assert.Equal(t, 0, table.Len())
			require.Len(t, rec.outcomes, tc.expect)
			for _, outcome := range rec.outcomes {
				assert.Equal(t, task.StatusFailed, outcome.Status)
				assert.Equal(t, ReasonWorkerRestarted, outcome.ReasonForIncompletion)
				assert.Equal(t, ReasonWorkerRestarted, outcome.OutputData["errMsg"])
				assert.Equal(t, false, outcome.OutputData["success"])
				assert.Equal(t, "wf-"+outcome.TaskID, outcome.WorkflowInstanceID)
			}
		})
	}
}

func TestCoordinator_SweepRacesExecutor(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	coordinator, table, exec := newCoordinator(rec)
	for i := 0; i < 50; i++ {
		table.Add(ctx, &task.Task{TaskID: string(rune('A' + i)), TaskType: "echo"})
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, entry := range table.Snapshot(ctx) {
			_ = exec.Complete(ctx, entry.ID(), map[string]interface{}{"success": true})
		}
	}()
	coordinator.Sweep(ctx)
	wg.Wait()

	seen := map[string]int{}
	for _, outcome := range rec.outcomes {
		seen[outcome.TaskID]++
	}
	assert.Len(t, seen, 50)
	for id, count := range seen {
		assert.Equal(t, 1, count, id)
	}
}

func TestCoordinator_Watch(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	coordinator, table, _ := newCoordinator(rec)
	table.Add(ctx, &task.Task{TaskID: "t1", WorkflowInstanceID: "w1", TaskType: "echo"})

	done := make(chan int, 1)
	go func() { done <- coordinator.Watch(ctx, syscall.SIGUSR1) }()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case failed := <-done:
		assert.Equal(t, 1, failed)
	case <-time.After(time.Second):
		t.Fatal("watch did not return")
	}
}

func TestCoordinator_WatchContextDone(t *testing.T) {
	rec := &recorder{}
	coordinator, table, _ := newCoordinator(rec)
	table.Add(context.Background(), &task.Task{TaskID: "t1", TaskType: "echo"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, 1, coordinator.Watch(ctx))
}
