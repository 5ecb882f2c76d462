// Package server provides the local status server for handmouse.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/handmouse/internal/server/api"
	"github.com/ayusman/handmouse/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Runtime   api.Runtime
	Logger    logrus.FieldLogger
}

// Server represents the HTTP server for the handmouse status page.
type Server struct {
	config    Config
	mux       *http.ServeMux
	start     time.Time
	log       logrus.FieldLogger
	landmarks *LandmarksHub
	preview   *PreviewHub
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	log = log.WithField("component", "server")

	s := &Server{
		config:    config,
		mux:       http.NewServeMux(),
		start:     time.Now(),
		log:       log,
		landmarks: NewLandmarksHub(log),
		preview:   NewPreviewHub(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Runtime != nil {
		s.mux.Handle("/api/status", api.NewStatusHandler(s.config.Runtime))
		s.mux.Handle("/api/tracking", api.NewTrackingHandler(s.config.Runtime))
	}

	if s.config.Store != nil {
		events := api.NewEventsHandler(s.config.Store)
		s.mux.Handle("/api/events", events)
		s.mux.Handle("/api/events/", events)
		s.mux.Handle("/api/counts", api.NewCountsHandler(s.config.Store))
	}

	s.mux.Handle("/api/landmarks", s.landmarks)
	s.mux.Handle("/api/stream", s.preview)

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// Landmarks returns the hub that feeds /api/landmarks. Register it as an
// app observer.
func (s *Server) Landmarks() *LandmarksHub {
	return s.landmarks
}

// Preview returns the hub that feeds /api/stream. Register it as an app
// preview sink.
func (s *Server) Preview() *PreviewHub {
	return s.preview
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status          string `json:"status"`
	Uptime          string `json:"uptime"`
	LandmarkClients int    `json:"landmark_clients"`
	Preview         bool   `json:"preview"`
}

// handleHealth reports liveness and whether the live feeds have anything
// flowing through them.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := healthResponse{
		Status:          "ok",
		Uptime:          time.Since(s.start).Round(time.Second).String(),
		LandmarkClients: s.landmarks.Clients(),
		Preview:         s.preview.Latest() != nil,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.log.WithError(err).Debug("write health response")
	}
}

// Run serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		// Streaming handlers end when ctx does.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("status server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return srv.Close()
		}
		return err
	}
	return nil
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Run(ctx, ln)
}
