// Package api exposes the evaluation state over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/market-pulse/internal/engine"
	"github.com/mohamedkhairy/market-pulse/internal/models"
)

// PulseReader is the engine surface the API reads from
type PulseReader interface {
	Latest() *engine.CycleResult
	Recent(n int) []models.Alert
}

// Handler serves the REST API
type Handler struct {
	pulse PulseReader
}

// NewHandler creates an API handler over the engine
func NewHandler(pulse PulseReader) *Handler {
	return &Handler{pulse: pulse}
}

// Router builds the HTTP router. jwtSecret enables bearer auth on the
// /api/v1 subtree when non-empty; health and metrics stay open.
func (h *Handler) Router(jwtSecret string) *mux.Router {
	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(ChainMiddleware(RecoveryMiddleware(), LoggingMiddleware())))

	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(mux.MiddlewareFunc(AuthMiddleware(jwtSecret)))
	v1.HandleFunc("/signals", h.ListSignals).Methods(http.MethodGet)
	v1.HandleFunc("/alerts", h.ListAlerts).Methods(http.MethodGet)
	v1.HandleFunc("/alerts/recent", h.RecentAlerts).Methods(http.MethodGet)

	return r
}

// Health handles GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{"status": "ok"}
	if last := h.pulse.Latest(); last != nil {
		status["last_cycle"] = last.Timestamp
	}
	respondWithJSON(w, http.StatusOK, status)
}

// ListSignals handles GET /api/v1/signals
func (h *Handler) ListSignals(w http.ResponseWriter, r *http.Request) {
	last := h.pulse.Latest()
	if last == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No evaluation cycle has completed yet")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp": last.Timestamp,
		"signals":   last.Signals,
		"count":     len(last.Signals),
	})
}

// ListAlerts handles GET /api/v1/alerts, the latest cycle's alerts
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	last := h.pulse.Latest()
	if last == nil {
		respondWithError(w, http.StatusServiceUnavailable, "No evaluation cycle has completed yet")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"timestamp": last.Timestamp,
		"alerts":    alertsOrEmpty(last.Alerts),
		"count":     len(last.Alerts),
	})
}

// RecentAlerts handles GET /api/v1/alerts/recent?limit=N
func (h *Handler) RecentAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		limit = n
	}

	alerts := h.pulse.Recent(limit)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alertsOrEmpty(alerts),
		"count":  len(alerts),
	})
}

// alertsOrEmpty keeps the JSON field an array rather than null
func alertsOrEmpty(alerts []models.Alert) []models.Alert {
	if alerts == nil {
		return []models.Alert{}
	}
	return alerts
}
