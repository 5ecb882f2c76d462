// Package gesture classifies a single hand pose into the discrete labels that
// drive the cursor.
package gesture

import (
	"encoding/json"
	"fmt"

	"github.com/ayusman/handmouse/internal/detector"
)

// Label is the classification outcome for one hand in one frame.
type Label int

const (
	// Neutral is the default label, including the open-hand tracking pose.
	Neutral Label = iota
	// Pointing means the index finger is curled; tracking pauses.
	Pointing
	// Fist means every finger and the thumb are curled; left click.
	Fist
	// IndexAndMiddleExtended is the two-finger peace sign; double click.
	IndexAndMiddleExtended
)

var labelNames = map[Label]string{
	Neutral:                "NEUTRAL",
	Pointing:               "POINTING",
	Fist:                   "FIST",
	IndexAndMiddleExtended: "INDEX_AND_MIDDLE_EXTENDED",
}

func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Label(%d)", int(l))
}

// ParseLabel converts a label name, as produced by String, back to a Label.
func ParseLabel(s string) (Label, error) {
	for l, name := range labelNames {
		if name == s {
			return l, nil
		}
	}
	return Neutral, fmt.Errorf("unknown gesture label %q", s)
}

// MarshalJSON encodes the label as its name.
func (l Label) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a label name.
func (l *Label) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Finger names a digit of the hand.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
)

// reference holds the tip and the joint its height is compared against.
// Fingers use the DIP joint, the thumb its IP joint.
var reference = [...][2]detector.Landmark{
	Thumb:  {detector.ThumbTip, detector.ThumbIP},
	Index:  {detector.IndexTip, detector.IndexDIP},
	Middle: {detector.MiddleTip, detector.MiddleDIP},
	Ring:   {detector.RingTip, detector.RingDIP},
	Pinky:  {detector.PinkyTip, detector.PinkyDIP},
}

// Tip returns the fingertip landmark of f.
func (f Finger) Tip() detector.Landmark {
	return reference[f][0]
}

// Extended reports whether the fingertip sits above its reference joint.
// Image y grows downward, so above means a smaller y.
func Extended(hand *detector.HandLandmarks, f Finger) bool {
	tip, joint := reference[f][0], reference[f][1]
	return hand.Points[tip].Y < hand.Points[joint].Y
}

// Curled reports whether the fingertip sits below its reference joint.
// A tip level with its joint is neither extended nor curled.
func Curled(hand *detector.HandLandmarks, f Finger) bool {
	tip, joint := reference[f][0], reference[f][1]
	return hand.Points[tip].Y > hand.Points[joint].Y
}

// Classify maps a hand pose to exactly one label. The checks run from the
// most specific combined shape to the single-joint index check, and the
// first match wins. hand must be non-nil and complete.
func Classify(hand *detector.HandLandmarks) Label {
	switch {
	case indexAndMiddleOpen(hand):
		return IndexAndMiddleExtended
	case fistClosed(hand):
		return Fist
	case Curled(hand, Index):
		return Pointing
	default:
		return Neutral
	}
}

func indexAndMiddleOpen(hand *detector.HandLandmarks) bool {
	return Extended(hand, Index) &&
		Extended(hand, Middle) &&
		Curled(hand, Ring) &&
		Curled(hand, Pinky) &&
		Curled(hand, Thumb)
}

func fistClosed(hand *detector.HandLandmarks) bool {
	for f := Thumb; f <= Pinky; f++ {
		if !Curled(hand, f) {
			return false
		}
	}
	return true
}
