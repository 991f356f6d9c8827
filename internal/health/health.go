// Package health provides liveness and readiness endpoints for the advisor API.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// SourceStatus reports whether the prediction source can serve requests.
type SourceStatus interface {
	Name() string
	IsEnabled() bool
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Config holds the dependencies of the health handlers.
type Config struct {
	ServiceName string
	Version     string
	Logger      *logrus.Logger
	DB          DatabasePinger
	Source      SourceStatus
}

// Handler serves /health, /live and /ready.
type Handler struct {
	serviceName string
	version     string
	logger      *logrus.Logger
	db          DatabasePinger
	source      SourceStatus
	mu          sync.RWMutex
	ready       bool
}

// NewHandler creates health handlers. The service starts out not ready.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		logger:      cfg.Logger,
		db:          cfg.DB,
		source:      cfg.Source,
	}
}

// SetReady marks the service as ready to accept traffic.
func (h *Handler) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady returns whether the service is ready.
func (h *Handler) IsReady() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ready
}

// Routes mounts the health endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.handleHealth)
	r.Get("/live", h.handleLive)
	r.Get("/ready", h.handleReady)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   h.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   h.version,
	})
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: h.serviceName})
}

// handleReady fails on a manual not-ready flag or an unreachable database.
// A disabled prediction source is reported but does not fail readiness,
// since inline predictions still work.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	allHealthy := true

	if !h.IsReady() {
		allHealthy = false
		checks["service"] = "not_ready"
	} else {
		checks["service"] = "ok"
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			allHealthy = false
			checks["database"] = fmt.Sprintf("error: %v", err)
			if h.logger != nil {
				h.logger.WithError(err).Warn("Readiness database check failed")
			}
		} else {
			checks["database"] = "ok"
		}
	}

	if h.source != nil {
		if h.source.IsEnabled() {
			checks[h.source.Name()] = "ok"
		} else {
			checks[h.source.Name()] = "disabled"
		}
	}

	response := ReadyResponse{
		Service:  h.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}

	status := http.StatusOK
	response.Status = "ok"
	if !allHealthy {
		status = http.StatusServiceUnavailable
		response.Status = "not_ready"
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
