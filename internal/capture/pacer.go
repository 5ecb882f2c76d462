package capture

import "time"

// Frame rate defaults for the capture loop.
const (
	// IdleFPS is the frame rate when no motion is detected.
	IdleFPS = 5
	// ActiveFPS is the frame rate while the scene is moving.
	ActiveFPS = 15
	// IdleTimeout is how long without motion before dropping back to IdleFPS.
	IdleTimeout = 2 * time.Second
)

// Pacer switches the capture loop between an idle and an active frame rate
// based on motion. It is driven by a single loop and is not safe for
// concurrent use.
type Pacer struct {
	idleFPS     int
	activeFPS   int
	idleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewPacer returns a Pacer in idle mode. Non-positive arguments fall back to
// the package defaults.
func NewPacer(idleFPS, activeFPS int, idleTimeout time.Duration) *Pacer {
	if idleFPS <= 0 {
		idleFPS = IdleFPS
	}
	if activeFPS <= 0 {
		activeFPS = ActiveFPS
	}
	if idleTimeout <= 0 {
		idleTimeout = IdleTimeout
	}
	return &Pacer{
		idleFPS:     idleFPS,
		activeFPS:   activeFPS,
		idleTimeout: idleTimeout,
	}
}

// Observe records the motion result for a frame taken at now. It returns the
// frame rate to run at and whether that rate just changed.
func (p *Pacer) Observe(motion bool, now time.Time) (fps int, changed bool) {
	if motion {
		p.lastMotion = now
		if !p.active {
			p.active = true
			return p.activeFPS, true
		}
		return p.activeFPS, false
	}

	if p.active && now.Sub(p.lastMotion) > p.idleTimeout {
		p.active = false
		return p.idleFPS, true
	}

	return p.FPS(), false
}

// Active reports whether the pacer is in active mode.
func (p *Pacer) Active() bool {
	return p.active
}

// FPS returns the frame rate for the current mode.
func (p *Pacer) FPS() int {
	if p.active {
		return p.activeFPS
	}
	return p.idleFPS
}

// Interval returns the time between frames for the current mode.
func (p *Pacer) Interval() time.Duration {
	return time.Second / time.Duration(p.FPS())
}
