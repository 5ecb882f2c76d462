// Package hotkey listens for a global keyboard shortcut that pauses and
// resumes gesture control, so the user can always take the pointer back.
package hotkey

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	hook "github.com/robotn/gohook"
	"github.com/sirupsen/logrus"
)

// DefaultCombo is the shortcut used when none is configured.
const DefaultCombo = "ctrl+shift+h"

// ErrEmptyCombo is returned by ParseCombo for a shortcut with no keys.
var ErrEmptyCombo = errors.New("hotkey: empty key combination")

var modifiers = []string{"ctrl", "shift", "alt", "cmd"}

// ParseCombo splits a shortcut like "ctrl+shift+h" into the key list gohook
// expects: the main key first, then the modifiers.
func ParseCombo(combo string) ([]string, error) {
	var key string
	var mods []string
	for _, part := range strings.Split(strings.ToLower(combo), "+") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
			continue
		case slices.Contains(modifiers, part):
			if !slices.Contains(mods, part) {
				mods = append(mods, part)
			}
		case key != "":
			return nil, fmt.Errorf("hotkey: %q has more than one non-modifier key", combo)
		default:
			key = part
		}
	}
	if key == "" {
		if len(mods) == 0 {
			return nil, ErrEmptyCombo
		}
		return nil, fmt.Errorf("hotkey: %q has no non-modifier key", combo)
	}
	return append([]string{key}, mods...), nil
}

// Listen calls onPress every time keys are pressed together, until ctx is
// cancelled. It blocks.
func Listen(ctx context.Context, keys []string, onPress func(), log logrus.FieldLogger) {
	log = log.WithField("component", "hotkey")

	hook.Register(hook.KeyDown, keys, func(hook.Event) {
		log.WithField("keys", strings.Join(keys, "+")).Debug("hotkey pressed")
		onPress()
	})

	events := hook.Start()
	go func() {
		<-ctx.Done()
		hook.End()
	}()

	log.WithField("keys", strings.Join(keys, "+")).Info("hotkey listening")
	<-hook.Process(events)
}
