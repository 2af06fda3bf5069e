package sink

import (
	"fmt"
	"sync"
)

// Recorder is a Notifier that stores every notice, for tests and debugging.
// It assigns sequential message IDs so callers can assert on render
// supersession.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
	nextID  int
	failErr error
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes every subsequent Publish return err while still recording
// the notice. Used to exercise collaborator-failure paths.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failErr = err
}

func (r *Recorder) Publish(n Notice) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
	if r.failErr != nil {
		return "", r.failErr
	}
	r.nextID++
	return fmt.Sprintf("msg-%d", r.nextID), nil
}

// Notices returns a copy of everything published so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Last returns the most recent notice, or false when nothing was published.
func (r *Recorder) Last() (Notice, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notices) == 0 {
		return Notice{}, false
	}
	return r.notices[len(r.notices)-1], true
}
