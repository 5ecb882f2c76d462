// Package cursor turns gesture labels into pointer actions. A Controller holds
// the tracking flag and the last position the pointer was moved to.
package cursor

import (
	"github.com/ayusman/handmouse/internal/gesture"
)

// Point is a normalized image-space coordinate in [0,1]^2.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position is an absolute screen coordinate in pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a screen size in pixels.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// State is the mutable state of a Controller.
type State struct {
	TrackingEnabled bool     `json:"tracking_enabled"`
	LastPosition    Position `json:"last_position"`
}

// DefaultState is tracking on, pointer parked at the origin.
func DefaultState() State {
	return State{TrackingEnabled: true}
}

// Option configures a Controller.
type Option func(*Controller)

// WithInitialState sets the state the controller starts from and resets to.
func WithInitialState(s State) Option {
	return func(c *Controller) {
		c.initial = s
	}
}

// WithClamp keeps move targets inside [0,w-1] x [0,h-1].
func WithClamp() Option {
	return func(c *Controller) {
		c.clamp = true
	}
}

// WithSmoothing applies exponential smoothing to the fingertip with the given
// weight for the newest sample. Values outside (0,1) disable smoothing.
func WithSmoothing(alpha float64) Option {
	return func(c *Controller) {
		if alpha > 0 && alpha < 1 {
			c.alpha = alpha
		}
	}
}

// Controller drives one pointer from one hand. It is not safe for concurrent
// use; each tracked hand needs its own Controller.
type Controller struct {
	initial State
	state   State
	clamp   bool
	alpha   float64

	smoothed Point
	primed   bool
}

// NewController returns a Controller in DefaultState unless overridden.
func NewController(opts ...Option) *Controller {
	c := &Controller{initial: DefaultState()}
	for _, opt := range opts {
		opt(c)
	}
	c.state = c.initial
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

// Reset restores the initial state and drops any smoothing history.
func (c *Controller) Reset() {
	c.state = c.initial
	c.primed = false
}

// Evaluate applies one frame's gesture and fingertip to the state and returns
// the actions to inject, in order. An empty result means the pointer stays put.
//
// Clicks always target LastPosition, never the current fingertip. A click
// gesture leaves the tracking flag as it was, so while tracking is on the
// click is followed by a move.
func (c *Controller) Evaluate(label gesture.Label, tip Point, screen Size) []Action {
	var actions []Action

	switch label {
	case gesture.Pointing:
		c.state.TrackingEnabled = false
	case gesture.Fist:
		actions = append(actions, Action{Kind: Click, X: c.state.LastPosition.X, Y: c.state.LastPosition.Y})
	case gesture.IndexAndMiddleExtended:
		actions = append(actions, Action{Kind: DoubleClick, X: c.state.LastPosition.X, Y: c.state.LastPosition.Y})
	default:
		c.state.TrackingEnabled = true
	}

	if !c.state.TrackingEnabled {
		return actions
	}

	pos := c.toScreen(c.smooth(tip), screen)
	c.state.LastPosition = pos
	return append(actions, Action{Kind: Move, X: pos.X, Y: pos.Y})
}

func (c *Controller) smooth(tip Point) Point {
	if c.alpha == 0 {
		return tip
	}
	if !c.primed {
		c.smoothed = tip
		c.primed = true
		return tip
	}
	c.smoothed.X += c.alpha * (tip.X - c.smoothed.X)
	c.smoothed.Y += c.alpha * (tip.Y - c.smoothed.Y)
	return c.smoothed
}

// toScreen scales a normalized point to pixels, truncating toward zero.
func (c *Controller) toScreen(p Point, screen Size) Position {
	pos := Position{
		X: int(p.X * float64(screen.W)),
		Y: int(p.Y * float64(screen.H)),
	}
	if c.clamp {
		pos.X = clampInt(pos.X, 0, screen.W-1)
		pos.Y = clampInt(pos.Y, 0, screen.H-1)
	}
	return pos
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
