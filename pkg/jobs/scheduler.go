package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of periodic background work.
type Task struct {
	Name       string
	Interval   time.Duration
	RunOnStart bool
	Run        func(context.Context) error
}

// ResultHook observes every task execution.
type ResultHook func(name string, err error, elapsed time.Duration)

// SchedulerConfig configures scheduler behaviour.
type SchedulerConfig struct {
	Logger   *zap.Logger
	OnResult ResultHook
}

// Scheduler runs registered tasks on fixed intervals. Each task runs on its own goroutine and
// never overlaps with itself; a failed run is logged and the task waits for its next tick.
type Scheduler struct {
	logger   *zap.Logger
	onResult ResultHook

	mu      sync.Mutex
	tasks   map[string]*taskState
	order   []string
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

type taskState struct {
	task Task
	mu   sync.Mutex
}

// NewScheduler builds an idle scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Scheduler{
		logger:   cfg.Logger,
		onResult: cfg.OnResult,
		tasks:    make(map[string]*taskState),
	}
}

// Register adds a task. Tasks must be registered before Start.
func (s *Scheduler) Register(task Task) error {
	if task.Name == "" || task.Run == nil {
		return fmt.Errorf("task name and run func required")
	}
	if task.Interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive", task.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	if _, exists := s.tasks[task.Name]; exists {
		return fmt.Errorf("task %s already registered", task.Name)
	}
	s.tasks[task.Name] = &taskState{task: task}
	s.order = append(s.order, task.Name)
	return nil
}

// Start launches one loop per registered task. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for _, name := range s.order {
		state := s.tasks[name]
		s.wg.Add(1)
		go s.loop(ctx, state)
	}
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "tasks", s.order)
}

// Stop cancels task loops and waits for in-flight runs to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped")
}

// RunNow executes a registered task synchronously, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	state, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("task %s not registered", name)
	}
	return s.execute(ctx, state)
}

func (s *Scheduler) loop(ctx context.Context, state *taskState) {
	defer s.wg.Done()

	if state.task.RunOnStart {
		_ = s.execute(ctx, state)
	}

	ticker := time.NewTicker(state.task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.execute(ctx, state)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, state *taskState) error {
	state.mu.Lock()
	defer state.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	err := state.task.Run(ctx)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Sugar().Errorw("task failed", "task", state.task.Name, "elapsed", elapsed, "error", err)
	} else {
		s.logger.Sugar().Debugw("task completed", "task", state.task.Name, "elapsed", elapsed)
	}
	if s.onResult != nil {
		s.onResult(state.task.Name, err, elapsed)
	}
	return err
}
