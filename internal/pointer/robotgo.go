// Package pointer injects cursor actions into the host desktop.
package pointer

import (
	"errors"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/handmouse/internal/cursor"
)

// ErrNoDisplay is returned when the host reports an empty screen.
var ErrNoDisplay = errors.New("no display available")

// Robot drives the real pointer through robotgo.
type Robot struct {
	move   func(x, y int)
	click  func(double bool)
	screen func() (int, int)
}

// NewRobot returns a Pointer backed by robotgo.
func NewRobot() *Robot {
	return &Robot{
		move:   func(x, y int) { robotgo.Move(x, y) },
		click:  func(double bool) { robotgo.Click("left", double) },
		screen: robotgo.GetScreenSize,
	}
}

// MoveTo moves the pointer to absolute screen coordinates.
func (r *Robot) MoveTo(x, y int) error {
	r.move(x, y)
	return nil
}

// Click presses and releases the left button where the pointer is. The
// controller only clicks at the position it last moved to, so (x, y) is not
// sent again and the event stream matches a Recorder's.
func (r *Robot) Click(x, y int) error {
	r.click(false)
	return nil
}

// DoubleClick sends two left clicks where the pointer is.
func (r *Robot) DoubleClick(x, y int) error {
	r.click(true)
	return nil
}

// ScreenSize returns the main display size in pixels.
func (r *Robot) ScreenSize() (cursor.Size, error) {
	w, h := r.screen()
	if w <= 0 || h <= 0 {
		return cursor.Size{}, ErrNoDisplay
	}
	return cursor.Size{W: w, H: h}, nil
}
