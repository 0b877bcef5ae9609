package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/lox/fairwayforecast/internal/ingest"
	"github.com/lox/fairwayforecast/internal/metrics"
	"github.com/lox/fairwayforecast/internal/models"
	"github.com/lox/fairwayforecast/internal/playability"
)

func (s *Server) handleAPICourses(w http.ResponseWriter, r *http.Request) {
	q, err := parseCourses(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", validationDetails(err)...)
		return
	}

	courses, err := s.catalog.SearchCourses(q.Q, q.Country, q.Limit)
	if err != nil {
		log.Printf("api: search courses: %v", err)
		writeError(w, http.StatusInternalServerError, "course search failed")
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}
	writeJSON(w, http.StatusOK, courses)
}

func (s *Server) handleAPITeeTime(w http.ResponseWriter, r *http.Request) {
	q, err := parseTeeTime(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", validationDetails(err)...)
		return
	}
	tee, err := parseTee(q.Tee)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	round, _ := playability.ParseRoundType(q.Round)

	forecast, ok := s.forecast(w, r, q.LocationQuery)
	if !ok {
		return
	}

	decision := playability.Evaluate(playability.Request{
		Forecast: forecast,
		Country:  q.Country,
		TeeOff:   tee,
		Round:    round,
		Units:    q.unitSystem(),
	})
	metrics.Decisions.WithLabelValues(string(decision.Status)).Inc()
	writeJSON(w, http.StatusOK, decision)
}

func (s *Server) handleAPIBest(w http.ResponseWriter, r *http.Request) {
	q, err := parseLocation(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", validationDetails(err)...)
		return
	}

	forecast, ok := s.forecast(w, r, q)
	if !ok {
		return
	}

	outlooks := playability.Outlooks(forecast, playability.ResolveProfile(q.Country), q.unitSystem())
	writeJSON(w, http.StatusOK, outlooks)
}

// forecast fetches the forecast for q, writing a 502 on upstream failure.
func (s *Server) forecast(w http.ResponseWriter, r *http.Request, q LocationQuery) (playability.Forecast, bool) {
	f, err := s.forecasts.Forecast(r.Context(), q.Lat, q.Lon)
	if err != nil {
		log.Printf("api: forecast %s: %v", ingest.CacheKey(q.Lat, q.Lon), err)
		msg := "forecast provider unavailable"
		if errors.Is(err, ingest.ErrCircuitOpen) {
			msg = "forecast provider temporarily disabled"
		}
		writeError(w, http.StatusBadGateway, msg)
		return playability.Forecast{}, false
	}
	if s.watcher != nil {
		s.watcher.Watch(q.Lat, q.Lon)
	}
	return f, true
}
