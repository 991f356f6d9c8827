package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-advisor/internal/models"
	"github.com/yourusername/keiba-advisor/internal/service"
	"github.com/yourusername/keiba-advisor/internal/strategy"
)

// KellyRequest asks for a standalone Kelly stake
type KellyRequest struct {
	Probability float64  `json:"probability"`
	Odds        float64  `json:"odds"`
	Bankroll    *float64 `json:"bankroll,omitempty"`
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	recommendations *service.RecommendationService
	ledger          *service.PurchaseLedger
	kellyFraction   float64
	kellyCap        float64
	logger          *logrus.Logger
}

// NewHandler creates a new handler with dependencies
func NewHandler(recs *service.RecommendationService, ledger *service.PurchaseLedger, engine strategy.EngineConfig, logger *logrus.Logger) *Handler {
	return &Handler{
		recommendations: recs,
		ledger:          ledger,
		kellyFraction:   engine.KellyFraction,
		kellyCap:        engine.KellyCap,
		logger:          logger,
	}
}

// AnalyzeRace runs the engine for one race
func (h *Handler) AnalyzeRace(w http.ResponseWriter, r *http.Request) {
	var req service.AnalyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	rec, err := h.recommendations.Analyze(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, rec)
}

// GetRecommendation returns a previously issued recommendation
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	rec, err := h.recommendations.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, rec)
}

// PurchaseRecommendation records the plan of an issued recommendation as bought
func (h *Handler) PurchaseRecommendation(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	rec, err := h.recommendations.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	req, err := service.PurchaseFromRecommendation(rec)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	purchase, err := h.ledger.Record(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, purchase)
}

// RecordPurchase stores a purchase in the ledger
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	var req service.PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	purchase, err := h.ledger.Record(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, purchase)
}

// SettlePurchase applies a race payout
func (h *Handler) SettlePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req service.SettleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	purchase, err := h.ledger.Settle(r.Context(), id, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, purchase)
}

// PurchaseHistory lists the newest purchases
// Query params: limit
func (h *Handler) PurchaseHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", service.DefaultHistoryLimit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	history, err := h.ledger.History(r.Context(), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, history)
}

// Statistics returns the ledger grouped by bet type and season
func (h *Handler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ledger.Statistics(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, stats)
}

// Kelly quotes a fractional Kelly stake for one selection
func (h *Handler) Kelly(w http.ResponseWriter, r *http.Request) {
	var req KellyRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	bankroll := h.recommendations.Defaults().Bankroll
	if req.Bankroll != nil {
		bankroll = *req.Bankroll
	}

	quote, err := strategy.QuoteKelly(req.Probability, req.Odds, bankroll, h.kellyFraction, h.kellyCap)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, quote)
}

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s is not a valid id", models.ErrInvalidInput, param)
	}
	return id, nil
}
