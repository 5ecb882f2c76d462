package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ayusman/handmouse/internal/app"
	"github.com/ayusman/handmouse/internal/cursor"
	"github.com/ayusman/handmouse/internal/gesture"
	"github.com/ayusman/handmouse/internal/store"
)

// newTestStore creates an in-memory Store for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(store.MemoryDSN)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

type fakeRuntime struct {
	mu     sync.Mutex
	status app.Status
}

func (f *fakeRuntime) Status() app.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeRuntime) SetEnabled(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status.Enabled = enabled
}

func seedEvents(t *testing.T, s *store.Store, labels ...string) {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, label := range labels {
		err := s.Events().Create(&store.Event{
			Seq:       uint64(i + 1),
			Label:     label,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("failed to create event: %v", err)
		}
	}
}

func TestEventsHandler_List(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s, "NEUTRAL", "POINTING", "FIST")
	handler := NewEventsHandler(s)

	tests := []struct {
		name     string
		url      string
		wantCode int
		wantLen  int
	}{
		{"default limit", "/api/events", http.StatusOK, 3},
		{"explicit limit", "/api/events?limit=2", http.StatusOK, 2},
		{"zero limit", "/api/events?limit=0", http.StatusBadRequest, 0},
		{"bad limit", "/api/events?limit=abc", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var response listEventsResponse
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if len(response.Events) != tt.wantLen {
				t.Errorf("expected %d events, got %d", tt.wantLen, len(response.Events))
			}
			if response.Events[0].Label != "FIST" {
				t.Errorf("expected newest event first, got %s", response.Events[0].Label)
			}
		})
	}
}

func TestEventsHandler_ListEmpty(t *testing.T) {
	handler := NewEventsHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"events":[]`)) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
}

func TestEventsHandler_Get(t *testing.T) {
	s := newTestStore(t)
	e := &store.Event{Label: "FIST", Actions: "click(1,2)", X: 1, Y: 2}
	if err := s.Events().Create(e); err != nil {
		t.Fatal(err)
	}
	handler := NewEventsHandler(s)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events/"+e.ID, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		var got store.Event
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		if got.ID != e.ID || got.Actions != "click(1,2)" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events/nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestEventsHandler_Clear(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s, "FIST")
	handler := NewEventsHandler(s)

	req := httptest.NewRequest(http.MethodDelete, "/api/events", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
	events, _ := s.Events().List(0)
	if len(events) != 0 {
		t.Errorf("expected journal to be empty, got %d events", len(events))
	}
}

func TestCountsHandler(t *testing.T) {
	s := newTestStore(t)
	seedEvents(t, s, "FIST", "NEUTRAL", "FIST")
	handler := NewCountsHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/counts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response countsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatal(err)
	}
	if response.Counts["FIST"] != 2 || response.Counts["NEUTRAL"] != 1 {
		t.Errorf("counts = %v", response.Counts)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/counts", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST: expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStatusHandler(t *testing.T) {
	rt := &fakeRuntime{status: app.Status{
		Enabled:   true,
		Cursor:    cursor.State{TrackingEnabled: false, LastPosition: cursor.Position{X: 100, Y: 80}},
		LastLabel: gesture.Fist,
		Frames:    12,
	}}
	handler := NewStatusHandler(rt)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["last_label"] != "FIST" {
		t.Errorf("last_label = %v, want FIST", body["last_label"])
	}
	if body["frames"] != float64(12) {
		t.Errorf("frames = %v, want 12", body["frames"])
	}
}

func TestTrackingHandler(t *testing.T) {
	rt := &fakeRuntime{status: app.Status{Enabled: true}}
	handler := NewTrackingHandler(rt)

	tests := []struct {
		name        string
		method      string
		body        string
		wantCode    int
		wantEnabled bool
	}{
		{"disable", http.MethodPut, `{"enabled": false}`, http.StatusOK, false},
		{"enable", http.MethodPut, `{"enabled": true}`, http.StatusOK, true},
		{"missing field", http.MethodPut, `{}`, http.StatusBadRequest, true},
		{"invalid json", http.MethodPut, `{`, http.StatusBadRequest, true},
		{"wrong method", http.MethodPost, `{"enabled": false}`, http.StatusMethodNotAllowed, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/tracking", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
			if rt.Status().Enabled != tt.wantEnabled {
				t.Errorf("enabled = %v, want %v", rt.Status().Enabled, tt.wantEnabled)
			}
		})
	}
}
