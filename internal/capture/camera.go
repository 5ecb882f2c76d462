// Package capture reads webcam frames, detects motion between them and paces
// the capture loop.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default device settings.
const (
	DefaultFPS    = 5
	DefaultWidth  = 640
	DefaultHeight = 480
)

var (
	// ErrCameraNotOpen is returned when reading from a camera that is not open.
	ErrCameraNotOpen = errors.New("camera is not open")
	// ErrCameraUnavailable is returned when the device cannot be opened.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrNoFrame is returned when the device delivers no usable frame.
	ErrNoFrame = errors.New("no frame available")
)

// Camera is a frame source for the capture loop.
type Camera interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller closes it.
	ReadFrame() (*gocv.Mat, error)
	SetFPS(fps int)
	FPS() int
	IsOpen() bool
	// Resolution reports the frame size the source delivers. It is zero
	// until the source is open.
	Resolution() (width, height int)
}

// DeviceConfig selects and shapes a webcam.
type DeviceConfig struct {
	Device int
	// Mirror flips every frame horizontally, so moving the hand right moves
	// the cursor right.
	Mirror bool
	// Width and Height request a capture size. Zero uses the defaults.
	Width  int
	Height int
}

// DeviceCamera captures from a webcam through OpenCV.
type DeviceCamera struct {
	cfg DeviceConfig

	mu      sync.Mutex
	capture *gocv.VideoCapture
	fps     int
	width   int
	height  int
}

// NewCamera returns a closed DeviceCamera running at DefaultFPS.
func NewCamera(cfg DeviceConfig) *DeviceCamera {
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	return &DeviceCamera{cfg: cfg, fps: DefaultFPS}
}

// Open starts capturing and records the size the device settled on, which
// may differ from the one requested.
func (c *DeviceCamera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.cfg.Device)
	if err != nil {
		return fmt.Errorf("device %d: %w: %v", c.cfg.Device, ErrCameraUnavailable, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return fmt.Errorf("device %d: %w", c.cfg.Device, ErrCameraUnavailable)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.width = int(vc.Get(gocv.VideoCaptureFrameWidth))
	c.height = int(vc.Get(gocv.VideoCaptureFrameHeight))
	c.capture = vc
	return nil
}

// Close releases the device. Closing a closed camera is a no-op.
func (c *DeviceCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	c.width, c.height = 0, 0
	return err
}

// ReadFrame grabs one frame, mirrored when configured.
func (c *DeviceCamera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("device %d: %w", c.cfg.Device, ErrNoFrame)
	}

	if c.cfg.Mirror {
		gocv.Flip(mat, &mat, 1)
	}
	return &mat, nil
}

// SetFPS changes the capture rate. Non-positive values are ignored.
func (c *DeviceCamera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.capture != nil {
		c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the requested capture rate.
func (c *DeviceCamera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the device is capturing.
func (c *DeviceCamera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capture != nil
}

// Resolution returns the negotiated frame size.
func (c *DeviceCamera) Resolution() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}
