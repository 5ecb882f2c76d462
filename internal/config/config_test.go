package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func noEnvFile(t *testing.T) string {
	t.Helper()
	return "--env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestParse_Defaults(t *testing.T) {
	opts, err := Parse([]string{noEnvFile(t)})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if opts.Camera.Device != 0 || opts.Camera.NoMirror || opts.Camera.Width != 640 || opts.Camera.Height != 480 {
		t.Errorf("camera = %+v, want mirrored device 0 at 640x480", opts.Camera)
	}
	if opts.Detector.MaxHands != 1 || opts.Detector.MinConfidence != 0.5 {
		t.Errorf("detector = %+v", opts.Detector)
	}
	if opts.Loop.IdleFPS != 5 || opts.Loop.ActiveFPS != 15 || opts.Loop.IdleTimeout != 2*time.Second {
		t.Errorf("loop = %+v", opts.Loop)
	}
	if opts.Cursor.Clamp || opts.Cursor.Smoothing != 0 || opts.Cursor.ClickCooldown != 0 {
		t.Errorf("cursor = %+v, want clamp and smoothing off", opts.Cursor)
	}
	if opts.Log.JournalDSN != ":memory:" {
		t.Errorf("journal = %q, want :memory:", opts.Log.JournalDSN)
	}
	if opts.UI != UITray {
		t.Errorf("ui = %q, want %q", opts.UI, UITray)
	}
}

func TestParse_Flags(t *testing.T) {
	opts, err := Parse([]string{
		noEnvFile(t),
		"--device", "2",
		"--no-mirror",
		"--clamp",
		"--smoothing", "0.4",
		"--click-cooldown", "300ms",
		"--ui", "tui",
		"--addr=",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if opts.Camera.Device != 2 || !opts.Camera.NoMirror {
		t.Errorf("camera = %+v", opts.Camera)
	}
	if !opts.Cursor.Clamp || opts.Cursor.Smoothing != 0.4 || opts.Cursor.ClickCooldown != 300*time.Millisecond {
		t.Errorf("cursor = %+v", opts.Cursor)
	}
	if opts.UI != UITUI {
		t.Errorf("ui = %q", opts.UI)
	}
	if opts.Server.Addr != "" {
		t.Errorf("addr = %q, want empty", opts.Server.Addr)
	}
}

func TestParse_Env(t *testing.T) {
	t.Setenv("HANDMOUSE_ACTIVE_FPS", "30")
	t.Setenv("HANDMOUSE_DRY_RUN", "true")
	t.Setenv("HANDMOUSE_CAMERA_NO_MIRROR", "true")

	opts, err := Parse([]string{noEnvFile(t)})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.Loop.ActiveFPS != 30 {
		t.Errorf("active fps = %d, want 30", opts.Loop.ActiveFPS)
	}
	if !opts.Cursor.DryRun {
		t.Error("dry run should be enabled from env")
	}
	if !opts.Camera.NoMirror {
		t.Error("mirroring should be disabled from env")
	}
}

func TestParse_EnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "handmouse.env")
	if err := os.WriteFile(file, []byte("HANDMOUSE_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("HANDMOUSE_LOG_LEVEL") })

	opts, err := Parse([]string{"--env-file", file})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if opts.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug", opts.Log.Level)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"smoothing at one", []string{"--smoothing", "1"}},
		{"negative device", []string{"--device=-1"}},
		{"active slower than idle", []string{"--idle-fps", "20", "--active-fps", "10"}},
		{"confidence above one", []string{"--min-confidence", "1.5"}},
		{"unknown ui", []string{"--ui", "web"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"unknown flag", []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{noEnvFile(t)}, tt.args...)
			if _, err := Parse(args); err == nil {
				t.Errorf("Parse(%v) should fail", tt.args)
			}
		})
	}
}

func TestIsHelp(t *testing.T) {
	_, err := Parse([]string{noEnvFile(t), "--help"})
	if !IsHelp(err) {
		t.Errorf("IsHelp(%v) = false, want true", err)
	}
	if IsHelp(nil) {
		t.Error("IsHelp(nil) should be false")
	}
}

func TestIsParseError(t *testing.T) {
	_, err := Parse([]string{noEnvFile(t), "--no-such-flag"})
	if !IsParseError(err) {
		t.Errorf("IsParseError(%v) = false, want true", err)
	}

	_, err = Parse([]string{noEnvFile(t), "--smoothing=2"})
	if err == nil || IsParseError(err) {
		t.Errorf("validation error %v should not be a parse error", err)
	}
}
