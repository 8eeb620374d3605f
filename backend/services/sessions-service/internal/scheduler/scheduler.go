package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrStopped is returned when scheduling on a stopped Scheduler.
var ErrStopped = errors.New("scheduler: stopped")

// Task is the body of a repeating job. It runs synchronously on the job goroutine.
type Task func()

// Scheduler runs named tasks on fixed periods until stopped.
type Scheduler struct {
	logger *zap.Logger

	mu      sync.Mutex
	handles []*Handle
	stopped bool
}

// New returns an empty scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Every starts task on a fixed period. The first run happens one interval after the call.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) (*Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("scheduler: %s: interval must be positive, got %s", name, interval)
	}
	if task == nil {
		return nil, fmt.Errorf("scheduler: %s: task is nil", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.handles = append(s.handles, h)

	go h.loop(ctx, interval, task, s.logger)
	s.logger.Info("scheduled task started", zap.String("task", name), zap.Duration("interval", interval))
	return h, nil
}

// Stop cancels every task and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	for _, h := range handles {
		h.Stop()
	}
	s.logger.Info("scheduler stopped", zap.Int("tasks", len(handles)))
}

// Handle controls one scheduled task.
type Handle struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels future runs and blocks until a run in progress has completed.
// Calling Stop more than once is safe.
func (h *Handle) Stop() {
	h.cancel()
	<-h.done
}

// Done is closed after the task loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) loop(ctx context.Context, interval time.Duration, task Task, logger *zap.Logger) {
	defer close(h.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduled task stopped", zap.String("task", h.name))
			return
		case <-ticker.C:
			h.run(task, logger)
		}
	}
}

func (h *Handle) run(task Task, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("scheduled task panicked", zap.String("task", h.name), zap.Any("panic", r))
		}
	}()
	task()
}
