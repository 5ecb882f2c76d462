// Package detector provides hand detection interfaces and the landmark types
// consumed by gesture classification.
package detector

import (
	"errors"
	"fmt"
	"math"
)

// Landmark identifies one of the 21 hand landmarks, following the MediaPipe
// convention. See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
type Landmark int

const (
	Wrist Landmark = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// NumLandmarks is the number of points in a complete hand.
const NumLandmarks = 21

var landmarkNames = [NumLandmarks]string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_mcp", "index_pip", "index_dip", "index_tip",
	"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
	"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
	"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
}

func (l Landmark) String() string {
	if !l.Valid() {
		return fmt.Sprintf("landmark(%d)", int(l))
	}
	return landmarkNames[l]
}

// Valid reports whether l names one of the 21 landmarks.
func (l Landmark) Valid() bool {
	return l >= Wrist && l <= PinkyTip
}

// ErrIncompleteLandmarks is returned when a hand from the perception model
// does not carry a full, finite set of 21 points.
var ErrIncompleteLandmarks = errors.New("incomplete hand landmarks")

// Point3D represents a 3D point in space with x, y, z coordinates.
// For detected hands x and y are normalized image coordinates in [0,1].
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// At returns the point for the given landmark.
func (h *HandLandmarks) At(l Landmark) Point3D {
	return h.Points[l]
}

// NewHandLandmarks builds a HandLandmarks from an ordered point list,
// rejecting lists that are not exactly NumLandmarks long or that contain
// non-finite coordinates.
func NewHandLandmarks(points []Point3D, handedness string, score float64) (HandLandmarks, error) {
	lm := HandLandmarks{
		Handedness: handedness,
		Score:      score,
	}

	if len(points) != NumLandmarks {
		return lm, fmt.Errorf("%w: got %d points, want %d", ErrIncompleteLandmarks, len(points), NumLandmarks)
	}

	for i, p := range points {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			return lm, fmt.Errorf("%w: %s is not finite", ErrIncompleteLandmarks, Landmark(i))
		}
		lm.Points[i] = p
	}

	return lm, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// distance3D calculates the Euclidean distance between two 3D points.
func distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Size returns the distance from the wrist to the middle finger MCP, in the
// same units as the points. The overlay uses it to scale marker radii.
func (h *HandLandmarks) Size() float64 {
	if h == nil {
		return 0
	}
	return distance3D(h.Points[Wrist], h.Points[MiddleMCP])
}
