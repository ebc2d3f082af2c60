package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargemock/internal/clock"
	obsmetrics "github.com/smallbiznis/rechargemock/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	ErrInvalidConfig = errors.New("invalid_scheduler_config")
	ErrStopped       = errors.New("scheduler_stopped")
)

// Dispatcher runs a function once after a delay.
type Dispatcher interface {
	Schedule(ctx context.Context, name string, delay time.Duration, fn func(context.Context)) (*Task, error)
	Pending() int
}

// Task is a handle to one scheduled run.
type Task struct {
	ID    snowflake.ID
	Name  string
	DueAt time.Time

	cancel func() bool
}

// NewTask builds a handle for Dispatcher implementations outside this package.
func NewTask(id snowflake.ID, name string, dueAt time.Time, cancel func() bool) *Task {
	return &Task{ID: id, Name: name, DueAt: dueAt, cancel: cancel}
}

// Cancel prevents the task from running. It reports false when the task
// already ran or was cancelled.
func (t *Task) Cancel() bool {
	if t == nil || t.cancel == nil {
		return false
	}
	return t.cancel()
}

type Params struct {
	fx.In

	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Metrics *obsmetrics.SimulatorMetrics `optional:"true"`
	Config  Config                       `optional:"true"`
}

// Scheduler dispatches tasks on runtime timers.
type Scheduler struct {
	log     *zap.Logger
	cfg     Config
	genID   *snowflake.Node
	clock   clock.Clock
	metrics *obsmetrics.SimulatorMetrics

	mu      sync.Mutex
	pending map[snowflake.ID]pendingTask
	stopped bool
}

type pendingTask struct {
	name  string
	timer *time.Timer
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	metrics := p.Metrics
	if metrics == nil {
		metrics = obsmetrics.Simulator()
	}
	return &Scheduler{
		log:     p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:     p.Config.withDefaults(),
		genID:   p.GenID,
		clock:   p.Clock,
		metrics: metrics,
		pending: make(map[snowflake.ID]pendingTask),
	}, nil
}

// Schedule runs fn after delay. The task context keeps the values of ctx but
// not its cancellation, so it outlives the request that scheduled it.
func (s *Scheduler) Schedule(ctx context.Context, name string, delay time.Duration, fn func(context.Context)) (*Task, error) {
	if fn == nil {
		return nil, fmt.Errorf("schedule %s: nil task", name)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, ErrStopped
	}

	id := s.genID.Generate()
	dueAt := s.clock.Now().Add(delay)
	base := context.WithoutCancel(ctx)

	timer := time.AfterFunc(delay, func() {
		if !s.claim(id) {
			return
		}
		s.fire(base, id, name, dueAt, fn)
	})
	s.pending[id] = pendingTask{name: name, timer: timer}
	s.metrics.IncTaskScheduled(name)

	s.logger(ctx).Debug("scheduler.task.scheduled",
		zap.String("task", name),
		zap.String("task_id", id.String()),
		zap.Duration("delay", delay),
	)

	return NewTask(id, name, dueAt, func() bool {
		if !s.claim(id) {
			return false
		}
		timer.Stop()
		s.metrics.IncTaskCancelled(name)
		return true
	}), nil
}

// claim removes id from the pending set; only the first caller wins.
func (s *Scheduler) claim(id snowflake.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

func (s *Scheduler) fire(parent context.Context, id snowflake.ID, name string, dueAt time.Time, fn func(context.Context)) {
	ctx, cancel := context.WithTimeout(parent, s.cfg.TaskTimeout)
	defer cancel()

	ctx, run := s.startRun(ctx, id, name)
	s.metrics.IncTaskFired(name, s.clock.Now().Sub(dueAt))
	s.logRunStart(ctx, run)

	defer func() {
		if r := recover(); r != nil {
			s.logRunPanic(ctx, run, r)
		}
		s.logRunFinish(ctx, run)
	}()

	fn(ctx)
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending task and rejects new ones.
func (s *Scheduler) Stop() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	cancelled := 0
	for id, task := range s.pending {
		if task.timer.Stop() {
			cancelled++
			s.metrics.IncTaskCancelled(task.name)
		}
		delete(s.pending, id)
	}
	return cancelled
}
