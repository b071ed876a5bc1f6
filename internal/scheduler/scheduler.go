// Package scheduler turns the application's implicit timers (delayed
// second print job, midnight order clear) into explicit tasks with
// cancellation handles.
package scheduler

import (
	"sync"
	"time"
)

// Scheduler runs one-shot deferred tasks.
type Scheduler interface {
	After(d time.Duration, fn func()) Handle
}

// Handle cancels a pending task. Cancelling an already-fired task is a no-op.
type Handle interface {
	Cancel()
}

type timerScheduler struct{}

func New() Scheduler { return timerScheduler{} }

func (timerScheduler) After(d time.Duration, fn func()) Handle {
	return timerHandle{t: time.AfterFunc(d, fn)}
}

type timerHandle struct{ t *time.Timer }

func (h timerHandle) Cancel() { h.t.Stop() }

// MidnightTask fires fn at the next local midnight and reschedules itself
// after each firing. The deadline is not persisted: a restart across the
// boundary skips that day's firing.
type MidnightTask struct {
	sched Scheduler
	fn    func()

	mu      sync.Mutex
	handle  Handle
	stopped bool
}

func NewMidnightTask(sched Scheduler, fn func()) *MidnightTask {
	return &MidnightTask{sched: sched, fn: fn}
}

func (m *MidnightTask) Start() {
	m.schedule(untilNextMidnight(time.Now()))
}

func (m *MidnightTask) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.handle != nil {
		m.handle.Cancel()
	}
}

func (m *MidnightTask) schedule(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.handle = m.sched.After(d, func() {
		m.fn()
		m.schedule(untilNextMidnight(time.Now()))
	})
}

func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return next.Sub(now)
}

// Immediate is a Scheduler for tests: tasks run synchronously.
type Immediate struct{}

func (Immediate) After(d time.Duration, fn func()) Handle {
	fn()
	return noopHandle{}
}

type noopHandle struct{}

func (noopHandle) Cancel() {}
