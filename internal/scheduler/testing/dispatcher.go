// Package testing provides a deterministic Dispatcher driven by a fake clock.
package testing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rechargemock/internal/clock"
	"github.com/smallbiznis/rechargemock/internal/scheduler"
)

type manualTask struct {
	id    snowflake.ID
	seq   int
	name  string
	dueAt time.Time
	ctx   context.Context
	fn    func(context.Context)
}

// ManualDispatcher holds tasks until the test advances its clock.
type ManualDispatcher struct {
	mu    sync.Mutex
	clock *clock.FakeClock
	seq   int
	tasks map[snowflake.ID]*manualTask
}

func NewManualDispatcher(c *clock.FakeClock) *ManualDispatcher {
	return &ManualDispatcher{clock: c, tasks: make(map[snowflake.ID]*manualTask)}
}

func (d *ManualDispatcher) Schedule(ctx context.Context, name string, delay time.Duration, fn func(context.Context)) (*scheduler.Task, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	id := snowflake.ID(d.seq)
	task := &manualTask{
		id:    id,
		seq:   d.seq,
		name:  name,
		dueAt: d.clock.Now().Add(delay),
		ctx:   context.WithoutCancel(ctx),
		fn:    fn,
	}
	d.tasks[id] = task

	return scheduler.NewTask(id, name, task.dueAt, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.tasks[id]; !ok {
			return false
		}
		delete(d.tasks, id)
		return true
	}), nil
}

func (d *ManualDispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// Advance moves the clock forward and runs every task that became due, in
// due order. It returns the number of tasks run.
func (d *ManualDispatcher) Advance(delta time.Duration) int {
	d.clock.Advance(delta)
	return d.runDue(d.clock.Now())
}

// RunAll runs every pending task regardless of its due time.
func (d *ManualDispatcher) RunAll() int {
	return d.runDue(time.Time{})
}

func (d *ManualDispatcher) runDue(now time.Time) int {
	ran := 0
	for {
		task := d.next(now)
		if task == nil {
			return ran
		}
		task.fn(task.ctx)
		ran++
	}
}

// next pops the earliest due task; a zero now matches every task.
func (d *ManualDispatcher) next(now time.Time) *manualTask {
	d.mu.Lock()
	defer d.mu.Unlock()

	due := make([]*manualTask, 0, len(d.tasks))
	for _, task := range d.tasks {
		if now.IsZero() || !task.dueAt.After(now) {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].dueAt.Equal(due[j].dueAt) {
			return due[i].seq < due[j].seq
		}
		return due[i].dueAt.Before(due[j].dueAt)
	})
	delete(d.tasks, due[0].id)
	return due[0]
}

var _ scheduler.Dispatcher = (*ManualDispatcher)(nil)
