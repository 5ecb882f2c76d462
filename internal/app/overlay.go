package app

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/handmouse/internal/detector"
)

// Overlay marker colours.
var (
	IndexTipColor  = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	MiddleTipColor = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	LandmarkColor  = color.RGBA{R: 255, G: 0, B: 255, A: 0}
)

const minMarkerRadius = 3

// MarkerColor returns the overlay colour for a landmark.
func MarkerColor(l detector.Landmark) color.RGBA {
	switch l {
	case detector.IndexTip:
		return IndexTipColor
	case detector.MiddleTip:
		return MiddleTipColor
	default:
		return LandmarkColor
	}
}

// DrawOverlay marks every landmark of hand on frame. A nil hand or empty
// frame is left as is.
func DrawOverlay(frame *gocv.Mat, hand *detector.HandLandmarks) {
	if frame == nil || frame.Empty() || hand == nil {
		return
	}

	w, h := frame.Cols(), frame.Rows()
	radius := int(hand.Size() * float64(w) * 0.06)
	if radius < minMarkerRadius {
		radius = minMarkerRadius
	}

	for i, p := range hand.Points {
		l := detector.Landmark(i)
		center := image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
		r := radius / 2
		if l == detector.IndexTip || l == detector.MiddleTip {
			r = radius
		}
		if r < minMarkerRadius {
			r = minMarkerRadius
		}
		gocv.Circle(frame, center, r, MarkerColor(l), -1)
	}
}
