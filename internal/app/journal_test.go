package app

import (
	"testing"

	"github.com/ayusman/handmouse/internal/detector"
	"github.com/ayusman/handmouse/internal/logging"
	"github.com/ayusman/handmouse/internal/store"
)

func TestJournal_RecordsChangesAndClicks(t *testing.T) {
	s, err := store.New(store.MemoryDSN)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a, _ := newTestApp(t)
	a.AddObserver(NewJournal(s.Events(), logging.Discard()))

	palm := detector.WithIndexTip(detector.OpenPalmLandmarks(), 0.1, 0.1)
	fist := detector.FistLandmarks()

	// First hand is recorded, an unchanged NEUTRAL and an empty frame are not.
	a.ProcessHand(palm)
	a.ProcessHand(palm)
	a.publish(a.process(nil))

	// Label changes and every click are recorded.
	a.ProcessHand(detector.PointingLandmarks())
	a.ProcessHand(fist)
	a.ProcessHand(fist)
	a.ProcessHand(palm)

	events, err := s.Events().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("journal has %d events, want 5: %+v", len(events), events)
	}

	counts, err := s.Events().CountByLabel()
	if err != nil {
		t.Fatalf("CountByLabel() error = %v", err)
	}
	if counts["NEUTRAL"] != 2 || counts["POINTING"] != 1 || counts["FIST"] != 2 {
		t.Errorf("counts = %v", counts)
	}

	var click *store.Event
	for _, e := range events {
		if e.Label == "FIST" {
			click = e
			break
		}
	}
	if click == nil || click.Actions != "click(100,80)" || click.Tracking {
		t.Errorf("fist event = %+v, want click(100,80) with tracking off", click)
	}
}
