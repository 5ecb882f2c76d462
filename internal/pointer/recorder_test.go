package pointer

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ayusman/handmouse/internal/cursor"
)

func TestRecorder(t *testing.T) {
	var _ cursor.Pointer = (*Recorder)(nil)
	var _ cursor.Pointer = (*Robot)(nil)

	r := NewRecorder(cursor.Size{W: 1280, H: 720})

	size, err := r.ScreenSize()
	if err != nil || size != (cursor.Size{W: 1280, H: 720}) {
		t.Fatalf("ScreenSize() = %+v, %v", size, err)
	}

	actions := []cursor.Action{
		{Kind: cursor.Click, X: 10, Y: 20},
		{Kind: cursor.Move, X: 30, Y: 40},
		{Kind: cursor.DoubleClick, X: 50, Y: 60},
	}
	if err := cursor.Dispatch(r, actions); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if got := r.Actions(); !reflect.DeepEqual(got, actions) {
		t.Errorf("Actions() = %v, want %v", got, actions)
	}

	r.Reset()
	if len(r.Actions()) != 0 {
		t.Error("Reset() should clear recorded actions")
	}

	failure := errors.New("display unavailable")
	r.SetError(failure)
	if err := cursor.Dispatch(r, actions); !errors.Is(err, failure) {
		t.Errorf("Dispatch() error = %v, want %v", err, failure)
	}
}
