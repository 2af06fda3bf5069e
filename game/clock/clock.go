// Package clock schedules recurring and one-shot callbacks for game
// sessions.
//
// The contract sessions rely on: once Cancel returns, no further callback
// invocation will start, including one whose tick was already due. A
// recurring callback can also stop its own task by returning false, which
// avoids the deadlock of calling Cancel from inside the callback.
package clock

import (
	"sync"
	"time"
)

// Task is a handle to a scheduled callback.
type Task struct {
	mu       sync.Mutex
	canceled bool
	stop     chan struct{}
	once     sync.Once
}

// Every runs fn every interval until fn returns false or the task is
// canceled. The first invocation happens after one full interval.
func Every(interval time.Duration, fn func() bool) *Task {
	t := &Task{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if !t.invoke(fn) {
					return
				}
			}
		}
	}()
	return t
}

// After runs fn once after delay unless the task is canceled first.
func After(delay time.Duration, fn func()) *Task {
	t := &Task{stop: make(chan struct{})}
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-t.stop:
		case <-timer.C:
			t.invoke(func() bool {
				fn()
				return false
			})
		}
	}()
	return t
}

// invoke runs fn under the task mutex so that Cancel can fence out any
// invocation that has not yet started. It returns false when the task is
// done, either because it was canceled or because fn asked to stop.
func (t *Task) invoke(fn func() bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return false
	}
	if !fn() {
		t.canceled = true
		t.signalStop()
		return false
	}
	return true
}

// Cancel stops the task. It blocks until any in-flight callback finishes;
// after Cancel returns, no callback will run again. Cancel must not be
// called from inside the task's own callback (return false there instead).
func (t *Task) Cancel() {
	t.mu.Lock()
	t.canceled = true
	t.mu.Unlock()
	t.signalStop()
}

func (t *Task) signalStop() {
	t.once.Do(func() { close(t.stop) })
}
