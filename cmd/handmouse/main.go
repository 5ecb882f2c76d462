package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/app"
	"github.com/ayusman/handmouse/internal/capture"
	"github.com/ayusman/handmouse/internal/config"
	"github.com/ayusman/handmouse/internal/cursor"
	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/hotkey"
	"github.com/ayusman/handmouse/internal/logging"
	"github.com/ayusman/handmouse/internal/pointer"
	"github.com/ayusman/handmouse/internal/server"
	"github.com/ayusman/handmouse/internal/store"
	"github.com/ayusman/handmouse/internal/tray"
	"github.com/ayusman/handmouse/internal/tui"
)

func main() {
	opts, err := config.Parse(os.Args[1:])
	switch {
	case config.IsHelp(err):
		os.Exit(0)
	case config.IsParseError(err):
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "handmouse:", err)
		os.Exit(1)
	}
}

func run(opts *config.Options) error {
	logCfg := logging.Config{
		Level:    opts.Log.Level,
		File:     opts.Log.File,
		NoColors: opts.Log.NoColors,
	}
	if opts.UI == config.UITUI {
		// The terminal belongs to the view; only the log file gets output.
		logCfg.Output = io.Discard
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return err
	}

	var hotkeys []string
	if opts.Cursor.Hotkey != "" {
		if hotkeys, err = hotkey.ParseCombo(opts.Cursor.Hotkey); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.New(opts.Log.JournalDSN)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer st.Close()

	det, err := newDetector(opts, log)
	if err != nil {
		return err
	}

	var ptr cursor.Pointer = pointer.NewRobot()
	if opts.Cursor.DryRun {
		log.Info("dry run: pointer actions are recorded, not performed")
		ptr = pointer.NewRecorder(cursor.Size{W: opts.Cursor.ScreenWidth, H: opts.Cursor.ScreenHeight})
	}

	var ctrlOpts []cursor.Option
	if opts.Cursor.Clamp {
		ctrlOpts = append(ctrlOpts, cursor.WithClamp())
	}
	if opts.Cursor.Smoothing > 0 {
		ctrlOpts = append(ctrlOpts, cursor.WithSmoothing(opts.Cursor.Smoothing))
	}

	a, err := app.New(app.Config{
		Camera: capture.NewCamera(capture.DeviceConfig{
			Device: opts.Camera.Device,
			Mirror: !opts.Camera.NoMirror,
			Width:  opts.Camera.Width,
			Height: opts.Camera.Height,
		}),
		Motion:        capture.NewMotionDetector(opts.Loop.MotionThreshold),
		Pacer:         capture.NewPacer(opts.Loop.IdleFPS, opts.Loop.ActiveFPS, opts.Loop.IdleTimeout),
		Detector:      det,
		Controller:    cursor.NewController(ctrlOpts...),
		Pointer:       ptr,
		ClickCooldown: opts.Cursor.ClickCooldown,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	a.AddObserver(app.NewJournal(st.Events(), log))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, 3)

	var statusURL string
	if opts.Server.Addr != "" {
		staticDir := opts.Server.StaticDir
		if staticDir == "" {
			staticDir = findWebDir()
		}
		if staticDir != "" {
			log.WithField("dir", staticDir).Info("serving static files")
		}

		srv := server.New(server.Config{
			StaticDir: staticDir,
			Store:     st,
			Runtime:   a,
			Logger:    log,
		})
		a.AddObserver(srv.Landmarks())
		a.AddPreviewSink(srv.Preview())
		statusURL = "http://" + browsable(opts.Server.Addr) + "/"

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(ctx, opts.Server.Addr); err != nil {
				errs <- fmt.Errorf("status server: %w", err)
				cancel()
			}
		}()
	}

	var feed *tui.Feed
	var tr *tray.Tray
	switch opts.UI {
	case config.UITUI:
		feed = tui.NewFeed()
		a.AddObserver(feed)
	case config.UITray:
		tr = tray.New(a.IsEnabled())
		tr.OnToggle(a.SetEnabled)
		a.OnToggle(tr.SetEnabled)
		tr.OnQuit(cancel)
		if statusURL != "" {
			tr.OnOpenStatus(func() {
				if err := openBrowser(statusURL); err != nil {
					log.WithError(err).Warn("open status page")
				}
			})
		}
		a.AddObserver(tr)
	}

	if len(hotkeys) > 0 {
		go hotkey.Listen(ctx, hotkeys, func() {
			a.SetEnabled(!a.IsEnabled())
		}, log)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.Run(ctx); err != nil {
			errs <- err
			cancel()
		}
	}()

	switch {
	case tr != nil:
		go func() {
			<-ctx.Done()
			tr.Quit()
		}()
		// systray needs the main goroutine.
		tr.Run()
		cancel()
	case feed != nil:
		if err := tui.Run(ctx, a, feed); err != nil {
			log.WithError(err).Error("terminal view")
		}
		cancel()
	default:
		<-ctx.Done()
	}

	wg.Wait()
	close(errs)
	var all []error
	for err := range errs {
		all = append(all, err)
	}
	log.Info("handmouse stopped")
	return errors.Join(all...)
}

// newDetector starts MediaPipe, or the mock detector when MediaPipe is
// unavailable and fallback is allowed.
func newDetector(opts *config.Options, log logrus.FieldLogger) (detector.Detector, error) {
	det, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        opts.Detector.MaxHands,
		MinConfidence:   opts.Detector.MinConfidence,
		MinTrackingConf: opts.Detector.MinTrackingConf,
		Script:          opts.Detector.Script,
	}, log)
	if err == nil {
		return det, nil
	}
	if !opts.Detector.AllowMockFallback {
		return nil, fmt.Errorf("hand detector: %w", err)
	}
	log.WithError(err).Warn("mediapipe unavailable, using mock detector")
	return detector.NewMockDetector(), nil
}

// browsable turns a listen address into one a browser can open.
func browsable(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return strings.Replace(addr, "0.0.0.0", "localhost", 1)
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.handmouse/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".handmouse", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
