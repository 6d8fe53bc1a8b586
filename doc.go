// Package worker is a worker-side client for a Conductor-style task
// orchestrator. It polls the orchestrator for tasks of every registered
// type, runs each task through its handler on a bounded worker pool, reports
// the outcome, and fails every unfinished task when the process stops so the
// orchestrator can reschedule it.
//
// Typical use:
//
//	srv, _ := worker.New(ctx, worker.WithConfig(cfg))
//	srv.Register("echo", func(ctx context.Context, t *task.Task) task.Result {
//		return task.Completed(map[string]interface{}{"success": true})
//	})
//	_ = srv.Run(ctx) // returns after SIGINT/SIGTERM
//
// Handlers that finish later return task.Deferred() and settle the task
// through executor.SettlerFromContext or Service.Complete / Service.Fail.
package worker
