package order

import (
	"sync"
	"time"
)

// ScheduledTask is a deferred function call with an explicit cancellation
// handle. The owning workflow cancels it on teardown so the callback can
// never run against disposed state.
type ScheduledTask struct {
	mu       sync.Mutex
	timer    *time.Timer
	finished bool
}

// Schedule runs fn after delay unless Cancel is called first.
func Schedule(delay time.Duration, fn func()) *ScheduledTask {
	task := &ScheduledTask{}
	task.timer = time.AfterFunc(delay, func() {
		task.mu.Lock()
		if task.finished {
			task.mu.Unlock()
			return
		}
		task.finished = true
		task.mu.Unlock()
		fn()
	})
	return task
}

// Cancel stops the task. Cancelling an already-fired or already-cancelled
// task is a no-op. Returns true when the callback was prevented from running.
func (t *ScheduledTask) Cancel() bool {
	if t == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finished {
		return false
	}
	t.finished = true
	t.timer.Stop()
	return true
}

// Done reports whether the task already fired or was cancelled.
func (t *ScheduledTask) Done() bool {
	if t == nil {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}
