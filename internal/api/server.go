package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lox/fairwayforecast/internal/models"
	"github.com/lox/fairwayforecast/internal/playability"
)

// ForecastSource returns a normalized forecast for a location.
type ForecastSource interface {
	Forecast(ctx context.Context, lat, lon float64) (playability.Forecast, error)
}

// CourseCatalog searches imported courses.
type CourseCatalog interface {
	SearchCourses(query, country string, limit int) ([]models.Course, error)
	Ping() error
}

// Watcher registers a location for background cache warming.
type Watcher interface {
	Watch(lat, lon float64) bool
}

type Server struct {
	forecasts ForecastSource
	catalog   CourseCatalog
	watcher   Watcher
	port      string
	validate  *validator.Validate
}

func NewServer(forecasts ForecastSource, catalog CourseCatalog, port string) *Server {
	return &Server{
		forecasts: forecasts,
		catalog:   catalog,
		port:      port,
		validate:  newValidator(),
	}
}

// SetWatcher makes every answered forecast request register its location for
// warming.
func (s *Server) SetWatcher(w Watcher) {
	s.watcher = w
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/courses", s.handleAPICourses)
	mux.HandleFunc("GET /api/teetime", s.handleAPITeeTime)
	mux.HandleFunc("GET /api/best", s.handleAPIBest)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(); err != nil {
		log.Printf("health: database: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}
