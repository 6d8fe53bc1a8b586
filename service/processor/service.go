package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/viant/worker/model/task"
	"github.com/viant/worker/service/messaging"
	"go.uber.org/zap"
)

// Config represents processor configuration
type Config struct {
	// WorkerCount is the number of tasks executed concurrently
	WorkerCount int
}

// DefaultConfig returns the default processor configuration
func DefaultConfig() Config {
	return Config{WorkerCount: 100}
}

// Executor runs a single task.
type Executor interface {
	Execute(ctx context.Context, t *task.Task) error
}

// Service is a bounded worker pool fed by the dispatch queue.
type Service struct {
	config   Config
	queue    messaging.Queue[task.Task]
	executor Executor
	logger   *zap.Logger

	busy     atomic.Int64
	started  atomic.Bool
	workerWg sync.WaitGroup
	cancel   context.CancelFunc
}

type worker struct {
	id      int
	service *Service
	ctx     context.Context
}

// New creates a new processor
func New(options ...Option) (*Service, error) {
	s := &Service{
		config: DefaultConfig(),
		logger: zap.NewNop(),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if s.queue == nil {
		return nil, fmt.Errorf("message queue is required")
	}
	if s.config.WorkerCount <= 0 {
		s.config.WorkerCount = DefaultConfig().WorkerCount
	}
	return s, nil
}

// Start launches the workers. Handlers run on a context detached from ctx's
// cancellation; it is cancelled only when Shutdown runs out of time.
func (s *Service) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return fmt.Errorf("processor already started")
	}
	baseCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	for i := 0; i < s.config.WorkerCount; i++ {
		w := &worker{id: i, service: s, ctx: baseCtx}
		s.workerWg.Add(1)
		go w.run()
	}
	return nil
}

// Submit queues a task for execution, blocking while the queue is full.
func (s *Service) Submit(ctx context.Context, t *task.Task) error {
	return s.queue.Publish(ctx, t)
}

// Available returns how many more tasks can start without waiting.
func (s *Service) Available() int {
	ret := s.config.WorkerCount - int(s.busy.Load()) - s.queue.Size()
	if ret < 0 {
		return 0
	}
	return ret
}

// Busy returns the number of tasks currently executing.
func (s *Service) Busy() int {
	return int(s.busy.Load())
}

// Shutdown stops accepting tasks and waits for running ones until ctx is
// done, at which point handler contexts are cancelled and ctx.Err returned.
func (s *Service) Shutdown(ctx context.Context) error {
	_ = s.queue.Close()
	if !s.started.Load() {
		return nil
	}
	done := make(chan struct{})
	go func() {
		s.workerWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		s.logger.Warn("processor shutdown timed out", zap.Int("busy", s.Busy()))
		return ctx.Err()
	}
}

func (w *worker) run() {
	defer w.service.workerWg.Done()
	for {
		msg, err := w.service.queue.Consume(w.ctx)
		if err != nil {
			if errors.Is(err, messaging.ErrClosed) || errors.Is(err, context.Canceled) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if msg == nil {
			continue
		}
		w.process(msg)
	}
}

func (w *worker) process(msg messaging.Message[task.Task]) {
	s := w.service
	s.busy.Add(1)
	defer s.busy.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("worker recovered panic", zap.Int("worker", w.id), zap.Any("panic", r), zap.Stack("stack"))
			_ = msg.Nack(fmt.Errorf("panic: %v", r))
		}
	}()
	if err := s.executor.Execute(w.ctx, msg.T()); err != nil {
		s.logger.Warn("failed to process task", zap.Int("worker", w.id), zap.String("task_id", msg.T().TaskID), zap.Error(err))
		_ = msg.Nack(err)
		return
	}
	_ = msg.Ack()
}
