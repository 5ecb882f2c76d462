// Package config parses handmouse options from flags, the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

// UI modes.
const (
	UITray = "tray"
	UITUI  = "tui"
	UINone = "none"
)

// CameraOptions selects and orients the capture device.
type CameraOptions struct {
	Device   int  `long:"device" env:"HANDMOUSE_CAMERA_DEVICE" default:"0" description:"Camera device index" validate:"gte=0"`
	NoMirror bool `long:"no-mirror" env:"HANDMOUSE_CAMERA_NO_MIRROR" description:"Use raw camera frames instead of the mirrored selfie view"`
	Width    int  `long:"frame-width" env:"HANDMOUSE_FRAME_WIDTH" default:"640" description:"Requested capture width" validate:"gte=160,lte=3840"`
	Height   int  `long:"frame-height" env:"HANDMOUSE_FRAME_HEIGHT" default:"480" description:"Requested capture height" validate:"gte=120,lte=2160"`
}

// DetectorOptions tunes the hand landmark detector.
type DetectorOptions struct {
	MaxHands          int     `long:"max-hands" env:"HANDMOUSE_MAX_HANDS" default:"1" description:"Maximum hands the detector reports" validate:"gte=1,lte=4"`
	MinConfidence     float64 `long:"min-confidence" env:"HANDMOUSE_MIN_CONFIDENCE" default:"0.5" description:"Minimum detection confidence" validate:"gte=0,lte=1"`
	MinTrackingConf   float64 `long:"min-tracking-confidence" env:"HANDMOUSE_MIN_TRACKING_CONFIDENCE" default:"0.5" description:"Minimum tracking confidence" validate:"gte=0,lte=1"`
	Script            string  `long:"script" env:"HANDMOUSE_DETECTOR_SCRIPT" description:"Path to the MediaPipe hand detector script"`
	AllowMockFallback bool    `long:"mock-fallback" env:"HANDMOUSE_MOCK_FALLBACK" description:"Use a mock detector when MediaPipe is unavailable"`
}

// LoopOptions paces the capture loop.
type LoopOptions struct {
	IdleFPS         int           `long:"idle-fps" env:"HANDMOUSE_IDLE_FPS" default:"5" description:"Frame rate while the scene is still" validate:"gte=1,lte=60"`
	ActiveFPS       int           `long:"active-fps" env:"HANDMOUSE_ACTIVE_FPS" default:"15" description:"Frame rate while motion is detected" validate:"gte=1,lte=60,gtefield=IdleFPS"`
	IdleTimeout     time.Duration `long:"idle-timeout" env:"HANDMOUSE_IDLE_TIMEOUT" default:"2s" description:"Time without motion before dropping to the idle frame rate" validate:"gt=0"`
	MotionThreshold float64       `long:"motion-threshold" env:"HANDMOUSE_MOTION_THRESHOLD" default:"1.0" description:"Percent of changed pixels that counts as motion" validate:"gt=0,lte=100"`
}

// CursorOptions tunes how gestures drive the pointer.
type CursorOptions struct {
	Clamp         bool          `long:"clamp" env:"HANDMOUSE_CLAMP" description:"Keep computed positions inside the screen"`
	Smoothing     float64       `long:"smoothing" env:"HANDMOUSE_SMOOTHING" default:"0" description:"Exponential smoothing factor for the fingertip, 0 disables" validate:"gte=0,lt=1"`
	ClickCooldown time.Duration `long:"click-cooldown" env:"HANDMOUSE_CLICK_COOLDOWN" default:"0s" description:"Minimum time between dispatched clicks, 0 disables" validate:"gte=0"`
	DryRun        bool          `long:"dry-run" env:"HANDMOUSE_DRY_RUN" description:"Record pointer actions instead of moving the real cursor"`
	ScreenWidth   int           `long:"screen-width" env:"HANDMOUSE_SCREEN_WIDTH" default:"1920" description:"Screen width used in dry-run mode" validate:"gt=0"`
	ScreenHeight  int           `long:"screen-height" env:"HANDMOUSE_SCREEN_HEIGHT" default:"1080" description:"Screen height used in dry-run mode" validate:"gt=0"`
	Hotkey        string        `long:"hotkey" env:"HANDMOUSE_HOTKEY" default:"ctrl+shift+h" description:"Global shortcut that pauses and resumes gesture control, empty disables"`
}

// ServerOptions configures the local status server.
type ServerOptions struct {
	Addr      string `long:"addr" env:"HANDMOUSE_ADDR" default:"127.0.0.1:8080" description:"Status server listen address, empty disables" validate:"omitempty,hostname_port"`
	StaticDir string `long:"static-dir" env:"HANDMOUSE_STATIC_DIR" description:"Directory of static files served at /"`
}

// LogOptions configures logging and the session journal.
type LogOptions struct {
	Level      string `long:"log-level" env:"HANDMOUSE_LOG_LEVEL" default:"info" description:"Log level" validate:"oneof=trace debug info warn warning error fatal panic"`
	File       string `long:"log-file" env:"HANDMOUSE_LOG_FILE" description:"Also write logs to this rotating file"`
	NoColors   bool   `long:"no-colors" env:"HANDMOUSE_NO_COLORS" description:"Disable coloured console logs"`
	JournalDSN string `long:"journal" env:"HANDMOUSE_JOURNAL" default:":memory:" description:"SQLite DSN for the session event journal" validate:"required"`
}

// Options is the full handmouse configuration.
type Options struct {
	Camera   CameraOptions   `group:"Camera"`
	Detector DetectorOptions `group:"Detector"`
	Loop     LoopOptions     `group:"Loop"`
	Cursor   CursorOptions   `group:"Cursor"`
	Server   ServerOptions   `group:"Server"`
	Log      LogOptions      `group:"Logging"`

	UI      string `long:"ui" env:"HANDMOUSE_UI" default:"tray" choice:"tray" choice:"tui" choice:"none" description:"User interface" validate:"oneof=tray tui none"`
	EnvFile string `long:"env-file" default:".env" description:"Dotenv file loaded before parsing"`
}

// Parse loads envFile (when present) into the environment, parses args
// and validates the result. Help requests surface as a *flags.Error of
// type flags.ErrHelp.
func Parse(args []string) (*Options, error) {
	if err := loadEnv(envFileArg(args)); err != nil {
		return nil, err
	}

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	parser.Name = "handmouse"
	parser.LongDescription = "Control the mouse pointer with hand gestures seen by a webcam"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := Validate(&opts); err != nil {
		return nil, err
	}

	return &opts, nil
}

// Validate checks option ranges.
func Validate(opts *Options) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(opts); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid option %s: failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

// IsHelp reports whether err is a help request from Parse.
func IsHelp(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp
}

// IsParseError reports whether err came from flag parsing. Such errors have
// already been printed by the parser.
func IsParseError(err error) bool {
	var flagsErr *flags.Error
	return errors.As(err, &flagsErr)
}

func loadEnv(file string) error {
	if file == "" {
		return nil
	}
	if err := godotenv.Load(file); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}

// envFileArg finds --env-file ahead of the full parse, since the file has
// to be loaded before env-backed defaults are read.
func envFileArg(args []string) string {
	file := ".env"
	for i, arg := range args {
		if arg == "--env-file" && i+1 < len(args) {
			file = args[i+1]
		} else if v, ok := strings.CutPrefix(arg, "--env-file="); ok {
			file = v
		}
	}
	return file
}
