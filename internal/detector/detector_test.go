package detector

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestLandmark_String(t *testing.T) {
	tests := []struct {
		landmark Landmark
		want     string
	}{
		{Wrist, "wrist"},
		{ThumbIP, "thumb_ip"},
		{IndexDIP, "index_dip"},
		{IndexTip, "index_tip"},
		{PinkyTip, "pinky_tip"},
		{Landmark(21), "landmark(21)"},
		{Landmark(-1), "landmark(-1)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.landmark.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLandmark_IndicesMatchMediaPipe(t *testing.T) {
	if ThumbTip != 4 || IndexTip != 8 || MiddleTip != 12 || RingTip != 16 || PinkyTip != 20 {
		t.Fatal("fingertip indices do not follow the MediaPipe layout")
	}
	if int(PinkyTip)+1 != NumLandmarks {
		t.Errorf("expected %d landmarks, last index is %d", NumLandmarks, PinkyTip)
	}
}

func TestNewHandLandmarks(t *testing.T) {
	full := make([]Point3D, NumLandmarks)
	for i := range full {
		full[i] = Point3D{X: float64(i) / 100, Y: float64(i) / 50}
	}

	t.Run("accepts a complete hand", func(t *testing.T) {
		hand, err := NewHandLandmarks(full, "Left", 0.8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if hand.Handedness != "Left" || hand.Score != 0.8 {
			t.Errorf("metadata not preserved: %+v", hand)
		}
		if hand.At(IndexTip) != full[IndexTip] {
			t.Errorf("At(IndexTip) = %+v, want %+v", hand.At(IndexTip), full[IndexTip])
		}
	})

	t.Run("rejects short point list", func(t *testing.T) {
		_, err := NewHandLandmarks(full[:20], "Right", 0.9)
		if !errors.Is(err, ErrIncompleteLandmarks) {
			t.Errorf("expected ErrIncompleteLandmarks, got %v", err)
		}
	})

	t.Run("rejects long point list", func(t *testing.T) {
		_, err := NewHandLandmarks(append(full, Point3D{}), "Right", 0.9)
		if !errors.Is(err, ErrIncompleteLandmarks) {
			t.Errorf("expected ErrIncompleteLandmarks, got %v", err)
		}
	})

	t.Run("rejects non-finite coordinates", func(t *testing.T) {
		bad := append([]Point3D(nil), full...)
		bad[MiddleDIP].Y = math.NaN()

		_, err := NewHandLandmarks(bad, "Right", 0.9)
		if !errors.Is(err, ErrIncompleteLandmarks) {
			t.Fatalf("expected ErrIncompleteLandmarks, got %v", err)
		}
		if !strings.Contains(err.Error(), "middle_dip") {
			t.Errorf("error should name the landmark, got %q", err.Error())
		}
	})
}

func TestDecodeHands(t *testing.T) {
	t.Run("no hands", func(t *testing.T) {
		hands, err := decodeHands([]byte(`{"hands": []}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 0 {
			t.Errorf("expected 0 hands, got %d", len(hands))
		}
	})

	t.Run("incomplete hand fails the frame", func(t *testing.T) {
		_, err := decodeHands([]byte(`{"hands": [{"points": [{"x": 0.1, "y": 0.2, "z": 0}], "handedness": "Right", "score": 0.9}]}`))
		if !errors.Is(err, ErrIncompleteLandmarks) {
			t.Errorf("expected ErrIncompleteLandmarks, got %v", err)
		}
	})

	t.Run("malformed JSON", func(t *testing.T) {
		if _, err := decodeHands([]byte(`not json`)); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("complete hand", func(t *testing.T) {
		var b strings.Builder
		b.WriteString(`{"hands": [{"handedness": "Right", "score": 0.97, "points": [`)
		for i := 0; i < NumLandmarks; i++ {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(`{"x": 0.5, "y": 0.5, "z": 0}`)
		}
		b.WriteString(`]}]}`)

		hands, err := decodeHands([]byte(b.String()))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}
		if hands[0].Score != 0.97 {
			t.Errorf("score = %f, want 0.97", hands[0].Score)
		}
	})
}

func TestHandLandmarks_Size(t *testing.T) {
	hand := HandLandmarks{}
	hand.Points[Wrist] = Point3D{X: 10.0, Y: 20.0, Z: 5.0}
	hand.Points[MiddleMCP] = Point3D{X: 13.0, Y: 24.0, Z: 5.0}

	if got := hand.Size(); math.Abs(got-5.0) > 1e-9 {
		t.Errorf("Size() = %f, want 5.0", got)
	}

	var nilHand *HandLandmarks
	if nilHand.Size() != 0 {
		t.Error("nil hand should have size 0")
	}
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{FistLandmarks(), OpenPalmLandmarks()})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
		if mock.Calls() != 1 {
			t.Errorf("expected 1 call, got %d", mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
	})
}

func TestPresets(t *testing.T) {
	curled := func(h HandLandmarks, tip, joint Landmark) bool {
		return h.Points[tip].Y > h.Points[joint].Y
	}

	t.Run("fist folds every finger", func(t *testing.T) {
		h := FistLandmarks()
		pairs := [][2]Landmark{{ThumbTip, ThumbIP}, {IndexTip, IndexDIP}, {MiddleTip, MiddleDIP}, {RingTip, RingDIP}, {PinkyTip, PinkyDIP}}
		for _, p := range pairs {
			if !curled(h, p[0], p[1]) {
				t.Errorf("%s should be below %s", p[0], p[1])
			}
		}
	})

	t.Run("pointing curls only the index", func(t *testing.T) {
		h := PointingLandmarks()
		if !curled(h, IndexTip, IndexDIP) {
			t.Error("index should be curled")
		}
		if curled(h, MiddleTip, MiddleDIP) || curled(h, ThumbTip, ThumbIP) {
			t.Error("middle and thumb should stay open")
		}
	})

	t.Run("peace raises index and middle", func(t *testing.T) {
		h := PeaceLandmarks()
		if curled(h, IndexTip, IndexDIP) || curled(h, MiddleTip, MiddleDIP) {
			t.Error("index and middle should be raised")
		}
		if !curled(h, RingTip, RingDIP) || !curled(h, PinkyTip, PinkyDIP) || !curled(h, ThumbTip, ThumbIP) {
			t.Error("ring, pinky and thumb should be folded")
		}
	})

	t.Run("WithIndexTip keeps the pose", func(t *testing.T) {
		h := WithIndexTip(OpenPalmLandmarks(), 0.1, 0.2)
		if h.Points[IndexTip].X != 0.1 || h.Points[IndexTip].Y != 0.2 {
			t.Errorf("index tip = %+v, want (0.1, 0.2)", h.Points[IndexTip])
		}
		if curled(h, IndexTip, IndexDIP) {
			t.Error("moving the tip should not curl the index finger")
		}
	})
}
