package app

import (
	"time"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/handmouse/internal/cursor"
	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/gesture"
)

// runPipeline is the capture loop. Each tick reads a frame, lets motion pick
// the frame rate, detects hands and drives the pointer from the first one.
// Detection runs on every tick; motion only changes how often ticks happen.
func (a *App) runPipeline(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := a.newTicker()
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}
			if a.step() {
				ticker.Reset(a.interval())
			}
		}
	}
}

// step processes one frame and reports whether the frame rate changed.
func (a *App) step() bool {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		a.log.WithError(err).Debug("read frame")
		return false
	}
	defer frame.Close()

	motion, changedPct := a.motion.Detect(frame)

	a.mu.Lock()
	fps, rateChanged := a.pacer.Observe(motion, a.now())
	a.mu.Unlock()

	if rateChanged {
		a.camera.SetFPS(fps)
		a.log.WithFields(logrus.Fields{"fps": fps, "changed": changedPct}).Debug("frame rate switched")
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		a.log.WithError(err).Warn("detect hands")
		hands = nil
	}

	var hand *detector.HandLandmarks
	if len(hands) > 0 {
		hand = &hands[0]
	}

	result := a.process(hand)
	result.Motion = motion
	result.FPS = fps

	if a.hasSinks() {
		DrawOverlay(frame, hand)
		if jpeg, err := encodeJPEG(frame); err != nil {
			a.log.WithError(err).Debug("encode preview")
		} else {
			a.pushPreview(jpeg)
		}
	}

	a.publish(result)
	return rateChanged
}

// ProcessHand runs classification and pointer control for one detected hand
// and publishes the result, the same way the loop does for the first hand of
// a frame.
func (a *App) ProcessHand(hand detector.HandLandmarks) FrameResult {
	result := a.process(&hand)
	a.mu.RLock()
	result.FPS = a.pacer.FPS()
	a.mu.RUnlock()
	a.publish(result)
	return result
}

// process classifies hand, evaluates the controller and dispatches the
// resulting actions. A nil hand leaves all state untouched.
func (a *App) process(hand *detector.HandLandmarks) FrameResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.frames++
	result := FrameResult{
		Seq:   a.frames,
		Time:  a.now(),
		Hand:  hand,
		State: a.controller.State(),
	}

	if hand == nil {
		result.Label = a.lastLabel
		return result
	}

	label := gesture.Classify(hand)
	result.Label = label

	if a.screen == (cursor.Size{}) {
		if err := a.refreshScreen(); err != nil {
			a.log.WithError(err).Warn("screen size unavailable")
			return result
		}
	}

	tip := hand.At(detector.IndexTip)
	actions := a.controller.Evaluate(label, cursor.Point{X: tip.X, Y: tip.Y}, a.screen)
	actions = a.throttle(actions, result.Time)

	if !a.handSeen || label != a.lastLabel {
		a.log.WithFields(logrus.Fields{
			"gesture":  label,
			"tracking": a.controller.State().TrackingEnabled,
		}).Info("gesture changed")
	}
	a.lastLabel = label
	a.handSeen = true

	if err := cursor.Dispatch(a.pointer, actions); err != nil {
		a.log.WithError(err).Warn("pointer injection failed")
	}

	result.Actions = actions
	result.State = a.controller.State()
	return result
}

// throttle drops clicks that arrive within the cooldown of the last
// dispatched click. Callers hold a.mu.
func (a *App) throttle(actions []cursor.Action, now time.Time) []cursor.Action {
	if a.clicks == nil || len(actions) == 0 {
		return actions
	}

	kept := actions[:0]
	for _, act := range actions {
		if act.Kind == cursor.Click || act.Kind == cursor.DoubleClick {
			if !a.clicks.AllowN(now, 1) {
				a.log.WithField("action", act).Debug("click suppressed by cooldown")
				continue
			}
		}
		kept = append(kept, act)
	}
	return kept
}

func (a *App) newTicker() *time.Ticker {
	return time.NewTicker(a.interval())
}

func (a *App) interval() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.pacer.Interval()
}

func encodeJPEG(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
