package server

import (
	"fmt"
	"net/http"
	"sync"
)

// PreviewHub keeps the latest overlay preview and streams it as MJPEG. It is
// an app.PreviewSink.
type PreviewHub struct {
	mu     sync.Mutex
	latest []byte
	notify chan struct{}
}

// NewPreviewHub creates an empty hub.
func NewPreviewHub() *PreviewHub {
	return &PreviewHub{notify: make(chan struct{})}
}

// PushFrame replaces the latest frame and wakes every streaming client.
func (h *PreviewHub) PushFrame(jpeg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = jpeg
	close(h.notify)
	h.notify = make(chan struct{})
}

// Latest returns the most recent frame, or nil before the first one.
func (h *PreviewHub) Latest() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest
}

func (h *PreviewHub) next() ([]byte, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.latest, h.notify
}

// ServeHTTP streams MJPEG frames to connected clients, one part per pushed
// frame, starting with the latest one.
func (h *PreviewHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	frame, wait := h.next()
	for {
		if frame != nil {
			if err := writePart(w, frame); err != nil {
				return
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-wait:
		}
		frame, wait = h.next()
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
