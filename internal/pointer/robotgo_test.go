package pointer

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/ayusman/handmouse/internal/cursor"
)

// fakeRobot returns a Robot whose robotgo calls are written to events.
func fakeRobot(w, h int) (*Robot, *[]string) {
	var events []string
	r := &Robot{
		move: func(x, y int) { events = append(events, fmt.Sprintf("move %d,%d", x, y)) },
		click: func(double bool) {
			if double {
				events = append(events, "double")
				return
			}
			events = append(events, "click")
		},
		screen: func() (int, int) { return w, h },
	}
	return r, &events
}

func TestRobot_EventsFollowActions(t *testing.T) {
	r, events := fakeRobot(1000, 800)

	actions := []cursor.Action{
		{Kind: cursor.Move, X: 100, Y: 200},
		{Kind: cursor.Click, X: 100, Y: 200},
		{Kind: cursor.Move, X: 300, Y: 400},
		{Kind: cursor.DoubleClick, X: 300, Y: 400},
	}
	if err := cursor.Dispatch(r, actions); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	want := []string{"move 100,200", "click", "move 300,400", "double"}
	if !reflect.DeepEqual(*events, want) {
		t.Errorf("events = %v, want %v", *events, want)
	}
}

func TestRobot_ScreenSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		want    cursor.Size
		wantErr error
	}{
		{name: "display", w: 1920, h: 1080, want: cursor.Size{W: 1920, H: 1080}},
		{name: "no display", w: 0, h: 0, wantErr: ErrNoDisplay},
		{name: "zero height", w: 1920, h: 0, wantErr: ErrNoDisplay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := fakeRobot(tt.w, tt.h)
			got, err := r.ScreenSize()
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ScreenSize() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ScreenSize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
