package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-advisor/internal/logger"
	"github.com/yourusername/keiba-advisor/internal/metrics"
	"github.com/yourusername/keiba-advisor/internal/models"
	"github.com/yourusername/keiba-advisor/internal/repository"
)

const (
	// DefaultHistoryLimit is the page size of purchase history when none is given
	DefaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// PurchaseRequest records tickets bought for a race
type PurchaseRequest struct {
	RaceID           string     `json:"race_id" validate:"required"`
	Venue            string     `json:"venue,omitempty"`
	BetType          string     `json:"bet_type" validate:"required"`
	Combinations     []string   `json:"combinations" validate:"required,min=1,dive,required"`
	StrategyType     string     `json:"strategy_type,omitempty" validate:"omitempty,oneof=skip normal decisive"`
	PurchaseCount    int64      `json:"purchase_count" validate:"gt=0"`
	UnitPrice        int64      `json:"unit_price" validate:"gt=0"`
	TotalCost        int64      `json:"total_cost" validate:"gte=0"`
	ExpectedValue    float64    `json:"expected_value" validate:"gte=0"`
	ExpectedReturn   float64    `json:"expected_return" validate:"gte=0"`
	// RecommendationID links the purchase to an issued recommendation.
	// A recommendation can be purchased once.
	RecommendationID *uuid.UUID `json:"recommendation_id,omitempty"`
	// PurchaseDate defaults to today
	PurchaseDate     string     `json:"purchase_date,omitempty"`
}

// SettleRequest applies a race payout to a purchase
type SettleRequest struct {
	ActualReturn int64 `json:"actual_return" validate:"gte=0"`
}

// PurchaseHistory is a page of the ledger with its totals
type PurchaseHistory struct {
	Purchases []*models.PurchaseRecord `json:"purchases"`
	Summary   models.PurchaseSummary   `json:"summary"`
}

// PurchaseFromRecommendation builds the purchase of a recommendation's plan:
// the first purchase_count candidates of the best bet type at the chosen unit price.
func PurchaseFromRecommendation(rec *models.IssuedRecommendation) (PurchaseRequest, error) {
	if rec == nil || rec.Recommendation == nil {
		return PurchaseRequest{}, fmt.Errorf("%w: recommendation is empty", models.ErrInvalidInput)
	}
	plan := rec.Recommendation.Recommendation
	if rec.IsSkip() || plan.PurchaseCount == 0 {
		return PurchaseRequest{}, fmt.Errorf("%w: race %s is a skip", models.ErrInvalidInput, rec.RaceInfo.RaceID)
	}

	candidates := rec.BestCandidates()
	n := int(plan.PurchaseCount)
	if n > len(candidates) {
		n = len(candidates)
	}
	combos := make([]string, 0, n)
	for _, c := range candidates[:n] {
		combos = append(combos, c.Combination)
	}

	count := int64(len(combos))
	cost := count * plan.UnitPrice
	ev := rec.BestBetInfo.AverageExpectedValue
	id := rec.ID
	return PurchaseRequest{
		RecommendationID: &id,
		RaceID:           rec.RaceInfo.RaceID,
		Venue:            rec.RaceInfo.Venue,
		BetType:          string(rec.BestBetType),
		Combinations:     combos,
		StrategyType:     string(rec.RaceLevel),
		PurchaseCount:    count,
		UnitPrice:        plan.UnitPrice,
		TotalCost:        cost,
		ExpectedValue:    ev,
		ExpectedReturn:   models.RoundTo(float64(cost)*ev, 0),
	}, nil
}

// PurchaseLedger records purchases and reports on their outcomes
type PurchaseLedger struct {
	repo     repository.PurchaseRepository
	auditLog *logger.AuditLogger
	logger   *logrus.Logger
	location *time.Location
	now      func() time.Time
}

// NewPurchaseLedger creates a ledger. Purchase dates and seasons are taken in loc.
func NewPurchaseLedger(repo repository.PurchaseRepository, loc *time.Location, log *logrus.Logger) *PurchaseLedger {
	if loc == nil {
		loc = time.Local
	}
	return &PurchaseLedger{
		repo:     repo,
		auditLog: logger.NewAuditLogger(log),
		logger:   log,
		location: loc,
		now:      time.Now,
	}
}

// Record stores a new purchase
func (l *PurchaseLedger) Record(ctx context.Context, req PurchaseRequest) (*models.PurchaseRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	betType, ok := models.ParseBetType(req.BetType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown bet_type %q", models.ErrInvalidInput, req.BetType)
	}

	now := l.now().In(l.location)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.PurchaseDate != "" {
		parsed, err := time.Parse(models.RaceDateLayout, req.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("%w: purchase_date must be YYYY-MM-DD", models.ErrInvalidInput)
		}
		day = parsed
	}

	level := models.RaceLevel(req.StrategyType)
	if level == "" {
		level = models.RaceLevelNormal
	}
	cost := req.TotalCost
	if cost == 0 {
		cost = req.PurchaseCount * req.UnitPrice
	}

	p := &models.PurchaseRecord{
		ID:               uuid.New(),
		RecommendationID: req.RecommendationID,
		RaceID:           req.RaceID,
		PurchaseDate:     day,
		Season:           models.SeasonOf(day.Month()),
		Venue:            req.Venue,
		BetType:          betType,
		Combinations:     append([]string(nil), req.Combinations...),
		StrategyType:     level,
		PurchaseCount:    req.PurchaseCount,
		UnitPrice:        req.UnitPrice,
		TotalCost:        cost,
		ExpectedValue:    req.ExpectedValue,
		ExpectedReturn:   req.ExpectedReturn,
		CreatedAt:        now.UTC(),
	}

	if err := l.repo.Create(ctx, p); err != nil {
		if errors.Is(err, models.ErrDuplicatePurchase) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to record purchase: %w", err)
	}
	l.auditLog.LogPurchaseRecorded(p)
	metrics.RecordPurchase(p.BetType)
	return p, nil
}

// Settle applies the payout of a finished race. A purchase settles once.
func (l *PurchaseLedger) Settle(ctx context.Context, id uuid.UUID, req SettleRequest) (*models.PurchaseRecord, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	p, err := l.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsSettled() {
		return nil, models.ErrAlreadySettled
	}

	p.Settle(req.ActualReturn, l.now().UTC())
	// the repository only writes unsettled rows, so a concurrent settle loses here
	if err := l.repo.Settle(ctx, p); err != nil {
		if errors.Is(err, models.ErrAlreadySettled) || errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to settle purchase: %w", err)
	}
	l.auditLog.LogPurchaseSettled(p)
	metrics.RecordSettlement(p.IsHit)
	return p, nil
}

// History returns the newest purchases with their totals
func (l *PurchaseLedger) History(ctx context.Context, limit int) (*PurchaseHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	purchases, err := l.repo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &PurchaseHistory{Purchases: purchases, Summary: models.Summarize(purchases)}, nil
}

// Statistics groups the whole ledger by bet type and by season
func (l *PurchaseLedger) Statistics(ctx context.Context) (*models.PurchaseStatistics, error) {
	return l.repo.Statistics(ctx)
}

// RefreshGauges publishes the per-bet-type recovery and hit rates
func (l *PurchaseLedger) RefreshGauges(ctx context.Context) error {
	stats, err := l.repo.Statistics(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ledger statistics: %w", err)
	}
	metrics.UpdateLedgerGauges(stats.ByBetType)
	l.logger.WithField("bet_types", len(stats.ByBetType)).Debug("Ledger gauges refreshed")
	return nil
}
