package cursor

import (
	"encoding/json"
	"fmt"
)

// Kind is the type of a pointer action.
type Kind int

const (
	Move Kind = iota + 1
	Click
	DoubleClick
)

func (k Kind) String() string {
	switch k {
	case Move:
		return "move"
	case Click:
		return "click"
	case DoubleClick:
		return "double_click"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind as its name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Action is one request to the pointer injector, in screen pixels.
type Action struct {
	Kind Kind `json:"kind"`
	X    int  `json:"x"`
	Y    int  `json:"y"`
}

func (a Action) String() string {
	return fmt.Sprintf("%s(%d,%d)", a.Kind, a.X, a.Y)
}

// Pointer injects pointer events into the host. Implementations report their
// own failures; a Controller never retries.
type Pointer interface {
	MoveTo(x, y int) error
	Click(x, y int) error
	DoubleClick(x, y int) error
	ScreenSize() (Size, error)
}

// Dispatch sends actions to p in order and stops at the first failure.
func Dispatch(p Pointer, actions []Action) error {
	for _, a := range actions {
		var err error
		switch a.Kind {
		case Move:
			err = p.MoveTo(a.X, a.Y)
		case Click:
			err = p.Click(a.X, a.Y)
		case DoubleClick:
			err = p.DoubleClick(a.X, a.Y)
		default:
			err = fmt.Errorf("unknown action kind %d", int(a.Kind))
		}
		if err != nil {
			return fmt.Errorf("%s: %w", a.Kind, err)
		}
	}
	return nil
}
