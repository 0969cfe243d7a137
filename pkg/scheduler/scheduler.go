package scheduler

import (
	"sync"
	"time"

	"github.com/probeq/profiledb/pkg/logging"
)

// Scheduler runs registered funcs at a fixed rate, each on its own
// goroutine. A panicking tick is logged and does not cancel the schedule.
type Scheduler struct {
	logger logging.Logger

	mu      sync.Mutex
	tasks   []*Task
	stopped bool
}

// Task is one scheduled func. Stop is idempotent.
type Task struct {
	name     string
	interval time.Duration
	fn       func()
	logger   logging.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// New creates a scheduler that reports tick panics through the given logger.
func New(logger logging.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Schedule starts running fn every interval until the task or the scheduler
// is stopped. The first run happens one interval from now.
func (s *Scheduler) Schedule(name string, interval time.Duration, fn func()) *Task {
	t := &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		logger:   s.logger,
		stopCh:   make(chan struct{}),
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		close(t.stopCh)
		return t
	}
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	go t.loop()
	return t
}

// Stop cancels all tasks.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, t := range tasks {
		t.Stop()
	}
}

// Stop cancels the task. It does not wait for an in-flight tick.
func (t *Task) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}

func (t *Task) loop() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.runOnce()
		case <-t.stopCh:
			return
		}
	}
}

// runOnce isolates panics so one bad tick cannot kill the schedule.
func (t *Task) runOnce() {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("scheduled task panicked",
				logging.String("task", t.name), logging.Any("panic", r))
		}
	}()
	t.fn()
}
