// Package api exposes the recommendation engine and purchase ledger over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-advisor/internal/health"
)

// RouterConfig holds the cross-cutting settings of the router
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
	MetricsPath    string
	Metrics        http.Handler
}

// NewRouter wires the API routes, health endpoints and metrics
func NewRouter(cfg RouterConfig, h *Handler, hc *health.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if hc != nil {
		hc.Routes(r)
	}
	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze_race", h.AnalyzeRace)
		r.Get("/recommendations/{id}", h.GetRecommendation)
		r.Post("/recommendations/{id}/purchase", h.PurchaseRecommendation)

		r.Post("/purchase", h.RecordPurchase)
		r.Post("/purchase/{id}/settle", h.SettlePurchase)
		r.Get("/purchase_history", h.PurchaseHistory)
		r.Get("/statistics", h.Statistics)

		r.Post("/kelly", h.Kelly)
	})

	return r
}

// requestLogger logs each request through logrus
func requestLogger(logger *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
				"request_id":  middleware.GetReqID(r.Context()),
			}).Debug("HTTP request")
		})
	}
}
