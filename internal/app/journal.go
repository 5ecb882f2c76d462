package app

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/cursor"
	"github.com/ayusman/handmouse/internal/gesture"
	"github.com/ayusman/handmouse/internal/store"
)

// Journal is an Observer that writes gesture changes and clicks to the
// session event store. Frames without a hand are ignored.
type Journal struct {
	events *store.EventRepository
	log    logrus.FieldLogger

	mu       sync.Mutex
	seen     bool
	previous gesture.Label
}

// NewJournal returns a Journal writing to events.
func NewJournal(events *store.EventRepository, log logrus.FieldLogger) *Journal {
	return &Journal{
		events: events,
		log:    log.WithField("component", "journal"),
	}
}

// OnFrame records r when its label differs from the last recorded hand or
// when it carries a click.
func (j *Journal) OnFrame(r FrameResult) {
	if r.Hand == nil {
		return
	}

	j.mu.Lock()
	changed := !j.seen || r.Label != j.previous
	j.seen = true
	j.previous = r.Label
	j.mu.Unlock()

	if !changed && !hasClick(r.Actions) {
		return
	}

	names := make([]string, len(r.Actions))
	for i, a := range r.Actions {
		names[i] = a.String()
	}

	err := j.events.Create(&store.Event{
		Seq:       r.Seq,
		Label:     r.Label.String(),
		Actions:   strings.Join(names, " "),
		X:         r.State.LastPosition.X,
		Y:         r.State.LastPosition.Y,
		Tracking:  r.State.TrackingEnabled,
		CreatedAt: r.Time,
	})
	if err != nil {
		j.log.WithError(err).Warn("record event")
	}
}

func hasClick(actions []cursor.Action) bool {
	for _, a := range actions {
		if a.Kind == cursor.Click || a.Kind == cursor.DoubleClick {
			return true
		}
	}
	return false
}
