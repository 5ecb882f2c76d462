// Package app runs the capture loop that turns camera frames into pointer
// actions.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ayusman/handmouse/internal/capture"
	"github.com/ayusman/handmouse/internal/cursor"
	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/gesture"
)

// ErrNoPointer is returned by New when no pointer injector is configured.
var ErrNoPointer = errors.New("app: no pointer configured")

// ErrNoCamera is returned by Start when no camera or detector is configured.
var ErrNoCamera = errors.New("app: camera and detector are required to start")

// Config holds the collaborators of an App. Only Pointer is required; the
// loop additionally needs Camera and Detector.
type Config struct {
	Camera     capture.Camera
	Motion     *capture.MotionDetector
	Pacer      *capture.Pacer
	Detector   detector.Detector
	Controller *cursor.Controller
	Pointer    cursor.Pointer

	// ClickCooldown drops clicks and double-clicks that follow the previous
	// dispatched one sooner than this. Zero dispatches every click.
	ClickCooldown time.Duration

	Logger logrus.FieldLogger
}

// FrameResult describes one processed frame.
type FrameResult struct {
	Seq     uint64                  `json:"seq"`
	Time    time.Time               `json:"time"`
	Hand    *detector.HandLandmarks `json:"hand,omitempty"`
	Label   gesture.Label           `json:"label"`
	Actions []cursor.Action         `json:"actions"`
	State   cursor.State            `json:"state"`
	Motion  bool                    `json:"motion"`
	FPS     int                     `json:"fps"`
}

// Observer receives every FrameResult. OnFrame runs on the capture loop and
// must not block.
type Observer interface {
	OnFrame(FrameResult)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(FrameResult)

// OnFrame calls f(r).
func (f ObserverFunc) OnFrame(r FrameResult) { f(r) }

// PreviewSink receives JPEG-encoded frames with the landmark overlay drawn.
type PreviewSink interface {
	PushFrame(jpeg []byte)
}

// Status is a point-in-time snapshot of the runtime.
type Status struct {
	Enabled   bool          `json:"enabled"`
	Running   bool          `json:"running"`
	Cursor    cursor.State  `json:"cursor"`
	LastLabel gesture.Label `json:"last_label"`
	HandSeen  bool          `json:"hand_seen"`
	Frames    uint64        `json:"frames"`
	Active    bool          `json:"active"`
	FPS       int           `json:"fps"`
}

// App drives one pointer from the first hand the detector reports.
type App struct {
	camera     capture.Camera
	motion     *capture.MotionDetector
	pacer      *capture.Pacer
	detector   detector.Detector
	controller *cursor.Controller
	pointer    cursor.Pointer
	clicks     *rate.Limiter
	log        logrus.FieldLogger
	now        func() time.Time

	mu        sync.RWMutex
	enabled   bool
	stopCh    chan struct{}
	done      chan struct{}
	screen    cursor.Size
	frames    uint64
	lastLabel gesture.Label
	handSeen  bool

	obsMu     sync.RWMutex
	observers []Observer
	sinks     []PreviewSink
	toggles   []func(enabled bool)
}

// New creates an App. The App starts enabled but not running.
func New(config Config) (*App, error) {
	if config.Pointer == nil {
		return nil, ErrNoPointer
	}

	a := &App{
		camera:     config.Camera,
		motion:     config.Motion,
		pacer:      config.Pacer,
		detector:   config.Detector,
		controller: config.Controller,
		pointer:    config.Pointer,
		log:        config.Logger,
		now:        time.Now,
		enabled:    true,
	}

	if config.ClickCooldown > 0 {
		a.clicks = rate.NewLimiter(rate.Every(config.ClickCooldown), 1)
	}
	if a.motion == nil {
		a.motion = capture.NewMotionDetector(capture.DefaultMotionThreshold)
	}
	if a.pacer == nil {
		a.pacer = capture.NewPacer(capture.IdleFPS, capture.ActiveFPS, capture.IdleTimeout)
	}
	if a.controller == nil {
		a.controller = cursor.NewController()
	}
	if a.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		a.log = discard
	}
	a.log = a.log.WithField("component", "app")

	return a, nil
}

// SetEnabled pauses or resumes frame processing. A paused loop keeps
// running but skips every tick. Toggle listeners hear about actual changes
// only.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	changed := a.enabled != enabled
	a.enabled = enabled
	a.mu.Unlock()

	if !changed {
		return
	}
	a.log.WithField("enabled", enabled).Info("processing toggled")

	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	for _, fn := range a.toggles {
		fn(enabled)
	}
}

// OnToggle registers fn to run after every change of the enabled flag,
// whichever caller made it.
func (a *App) OnToggle(fn func(enabled bool)) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.toggles = append(a.toggles, fn)
}

// IsEnabled returns whether frame processing is enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector replaces the hand detector. It must be called before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// AddObserver registers o for every subsequent FrameResult.
func (a *App) AddObserver(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.observers = append(a.observers, o)
}

// AddPreviewSink registers s for overlay previews. Frames are only encoded
// while at least one sink is registered.
func (a *App) AddPreviewSink(s PreviewSink) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.sinks = append(a.sinks, s)
}

// Status returns a snapshot of the runtime.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{
		Enabled:   a.enabled,
		Running:   a.stopCh != nil,
		Cursor:    a.controller.State(),
		LastLabel: a.lastLabel,
		HandSeen:  a.handSeen,
		Frames:    a.frames,
		Active:    a.pacer.Active(),
		FPS:       a.pacer.FPS(),
	}
}

// Start opens the camera and runs the capture loop in a goroutine. Calling
// Start on a running App does nothing.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if a.camera == nil || a.detector == nil {
		return ErrNoCamera
	}

	if a.screen == (cursor.Size{}) {
		if err := a.refreshScreen(); err != nil {
			return err
		}
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.pacer.FPS())

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.runPipeline(a.stopCh, a.done)

	width, height := a.camera.Resolution()
	a.log.WithFields(logrus.Fields{
		"screen": a.screen,
		"frame":  fmt.Sprintf("%dx%d", width, height),
	}).Info("capture loop started")
	return nil
}

// Stop halts the capture loop and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("close camera")
	}
	a.motion.Close()
	if err := a.detector.Close(); err != nil {
		a.log.WithError(err).Warn("close detector")
	}

	a.log.Info("capture loop stopped")
}

// Run starts the loop and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	a.Stop()
	return nil
}

// refreshScreen caches the pointer's screen size. Callers hold a.mu.
func (a *App) refreshScreen() error {
	size, err := a.pointer.ScreenSize()
	if err != nil {
		return err
	}
	a.screen = size
	return nil
}

func (a *App) publish(result FrameResult) {
	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	for _, o := range a.observers {
		o.OnFrame(result)
	}
}

func (a *App) hasSinks() bool {
	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	return len(a.sinks) > 0
}

func (a *App) pushPreview(jpeg []byte) {
	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	for _, s := range a.sinks {
		s.PushFrame(jpeg)
	}
}
