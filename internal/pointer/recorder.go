package pointer

import (
	"sync"

	"github.com/ayusman/handmouse/internal/cursor"
)

// Recorder is a Pointer that records every action instead of injecting it.
// It is used by tests and by --dry-run.
type Recorder struct {
	mu      sync.Mutex
	size    cursor.Size
	actions []cursor.Action
	err     error
}

// NewRecorder returns a Recorder reporting the given screen size.
func NewRecorder(size cursor.Size) *Recorder {
	return &Recorder{size: size}
}

// SetError makes every subsequent injection fail with err.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) record(kind cursor.Kind, x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.actions = append(r.actions, cursor.Action{Kind: kind, X: x, Y: y})
	return nil
}

func (r *Recorder) MoveTo(x, y int) error      { return r.record(cursor.Move, x, y) }
func (r *Recorder) Click(x, y int) error       { return r.record(cursor.Click, x, y) }
func (r *Recorder) DoubleClick(x, y int) error { return r.record(cursor.DoubleClick, x, y) }

// ScreenSize returns the configured size.
func (r *Recorder) ScreenSize() (cursor.Size, error) {
	return r.size, nil
}

// Actions returns a copy of everything recorded so far.
func (r *Recorder) Actions() []cursor.Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cursor.Action(nil), r.actions...)
}

// Reset clears the recorded actions.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = nil
}
