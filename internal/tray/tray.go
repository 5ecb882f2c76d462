// Package tray provides the system tray menu for handmouse.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/handmouse/internal/app"
	"github.com/ayusman/handmouse/internal/gesture"
)

// Tray represents the system tray application. It is an app.Observer and
// keeps the last gesture and tracking state in the menu current.
type Tray struct {
	onToggle     func(enabled bool)
	onOpenStatus func()
	onQuit       func()
	enabled      bool
	mu           sync.RWMutex

	handSeen  bool
	lastLabel gesture.Label
	tracking  bool

	// Menu items stored for later updates
	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuTracking    *systray.MenuItem
}

// New creates a new Tray showing the given enabled state.
func New(enabled bool) *Tray {
	return &Tray{
		enabled:  enabled,
		tracking: true,
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenStatus sets the callback for the status page menu item. Without one
// the item is hidden.
func (t *Tray) OnOpenStatus(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpenStatus = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("handmouse")
	systray.SetTooltip("Hand gesture mouse control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume gesture control")
	systray.AddSeparator()

	t.menuLastGesture = systray.AddMenuItem(gestureTitle(t.lastLabel, t.handSeen), "Last detected gesture")
	t.menuLastGesture.Disable()
	t.menuTracking = systray.AddMenuItem(trackingTitle(t.tracking), "Whether the cursor follows the index finger")
	t.menuTracking.Disable()
	systray.AddSeparator()

	menuStatus := systray.AddMenuItem("Open Status Page...", "Open the status page in a browser")
	if t.onOpenStatus == nil {
		menuStatus.Hide()
	}
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit handmouse")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuStatus.ClickedCh:
				t.handleOpenStatus()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// SetEnabled updates the toggle item when the enabled state changes
// elsewhere. It does not call the toggle callback.
func (t *Tray) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
}

// handleOpenStatus handles the status page menu item click.
func (t *Tray) handleOpenStatus() {
	t.mu.RLock()
	callback := t.onOpenStatus
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// OnFrame updates the menu when the gesture or tracking state changes.
func (t *Tray) OnFrame(r app.FrameResult) {
	if r.Hand == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.handSeen || r.Label != t.lastLabel {
		t.handSeen = true
		t.lastLabel = r.Label
		if t.menuLastGesture != nil {
			t.menuLastGesture.SetTitle(gestureTitle(r.Label, true))
		}
	}

	if r.State.TrackingEnabled != t.tracking {
		t.tracking = r.State.TrackingEnabled
		if t.menuTracking != nil {
			t.menuTracking.SetTitle(trackingTitle(t.tracking))
		}
	}
}

// LastGesture returns the label shown in the menu and whether any hand has
// been seen.
func (t *Tray) LastGesture() (gesture.Label, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastLabel, t.handSeen
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func gestureTitle(label gesture.Label, seen bool) string {
	if !seen {
		return "Last: none"
	}
	return "Last: " + label.String()
}

func trackingTitle(tracking bool) string {
	if tracking {
		return "Cursor: tracking"
	}
	return "Cursor: paused"
}
