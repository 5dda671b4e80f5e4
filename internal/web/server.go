package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"innoportal/internal/storage"
)

// Stats is the snapshot served by /api/status.
type Stats struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	ActiveWidgets int    `json:"activeWidgets"`
	RecordedTurns int    `json:"recordedTurns"`
}

// WidgetCounter reports how many chat widgets are live in memory.
type WidgetCounter interface {
	ActiveWidgets() int
}

// Server is a small ops/status surface for the portal bot.
type Server struct {
	router    *mux.Router
	server    *http.Server
	recorder  storage.Recorder
	widgets   WidgetCounter
	startTime time.Time
}

func NewServer(port int, recorder storage.Recorder, widgets WidgetCounter) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		recorder:  recorder,
		widgets:   widgets,
		startTime: time.Now(),
	}
	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: c.Handler(s.router),
	}
	return s
}

// Start listens in the foreground; run it in a goroutine.
func (s *Server) Start() error {
	logrus.WithField("addr", s.server.Addr).Info("status server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := Stats{
		Status: "healthy",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	}
	if s.widgets != nil {
		stats.ActiveWidgets = s.widgets.ActiveWidgets()
	}
	if s.recorder != nil {
		if events, err := s.recorder.LoadInteractions(); err == nil {
			stats.RecordedTurns = len(events)
		} else {
			logrus.WithError(err).Warn("failed to load interaction log for status")
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stats)
}
