// Package service hosts the recommendation engine and the purchase ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/keiba-advisor/internal/datasource"
	"github.com/yourusername/keiba-advisor/internal/logger"
	"github.com/yourusername/keiba-advisor/internal/metrics"
	"github.com/yourusername/keiba-advisor/internal/models"
	"github.com/yourusername/keiba-advisor/internal/repository"
	"github.com/yourusername/keiba-advisor/internal/strategy"
)

// AnalyzeRequest asks for a recommendation. Predictions may be supplied
// inline; otherwise they are fetched from the prediction source by race id.
// Omitted strategy fields take the configured defaults.
type AnalyzeRequest struct {
	RaceID      string                   `json:"race_id,omitempty"`
	Race        *models.RaceContext      `json:"race_info,omitempty"`
	Predictions []models.HorsePrediction `json:"predictions,omitempty" validate:"omitempty,dive"`
	Bankroll    *float64                 `json:"bankroll,omitempty" validate:"omitempty,gt=0"`
	RiskMode    string                   `json:"risk_mode,omitempty"`
	UseKelly    *bool                    `json:"use_kelly,omitempty"`
	DynamicUnit *bool                    `json:"dynamic_unit,omitempty"`
	MinEV       *float64                 `json:"min_ev,omitempty" validate:"omitempty,gte=0"`
}

// StrategyConfig merges the request over the defaults
func (r AnalyzeRequest) StrategyConfig(defaults models.StrategyConfig) models.StrategyConfig {
	cfg := defaults
	if r.Bankroll != nil {
		cfg.Bankroll = *r.Bankroll
	}
	if r.RiskMode != "" {
		cfg.RiskMode = models.RiskMode(strings.ToLower(r.RiskMode))
	}
	if r.UseKelly != nil {
		cfg.UseKelly = *r.UseKelly
	}
	if r.DynamicUnit != nil {
		cfg.DynamicUnit = *r.DynamicUnit
	}
	if r.MinEV != nil {
		cfg.MinExpectedValue = *r.MinEV
	}
	return cfg
}

// RecommendationService validates requests, resolves predictions and runs the engine
type RecommendationService struct {
	recommender strategy.Engine
	source      datasource.PredictionSource
	recRepo     repository.RecommendationRepository
	cache       *RecommendationCache
	defaults    models.StrategyConfig
	strategyLog *logger.StrategyLogger
	auditLog    *logger.AuditLogger
	logger      *logrus.Logger
	now         func() time.Time
}

// NewRecommendationService creates a new recommendation service.
// source, recRepo and cache are optional.
func NewRecommendationService(
	recommender strategy.Engine,
	source datasource.PredictionSource,
	recRepo repository.RecommendationRepository,
	cache *RecommendationCache,
	defaults models.StrategyConfig,
	log *logrus.Logger,
) *RecommendationService {
	return &RecommendationService{
		recommender: recommender,
		source:      source,
		recRepo:     recRepo,
		cache:       cache,
		defaults:    defaults,
		strategyLog: logger.NewStrategyLogger(log),
		auditLog:    logger.NewAuditLogger(log),
		logger:      log,
		now:         time.Now,
	}
}

// Defaults returns the strategy applied to omitted request fields
func (s *RecommendationService) Defaults() models.StrategyConfig {
	return s.defaults
}

// Analyze produces a recommendation for one race
func (s *RecommendationService) Analyze(ctx context.Context, req AnalyzeRequest) (*models.IssuedRecommendation, error) {
	start := s.now()

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	cfg := req.StrategyConfig(s.defaults)

	predictions, race, err := s.resolvePredictions(ctx, req)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil {
		if key, err = CacheKey(predictions, race, cfg); err != nil {
			return nil, err
		}
		if cached, ok := s.cache.Get(key); ok {
			out := *cached
			out.Cached = true
			s.strategyLog.LogRecommendation(out.Recommendation, cfg.RiskMode, durationMs(s.now().Sub(start)), true)
			return &out, nil
		}
	}

	rec, err := s.recommender.Recommend(predictions, race, cfg)
	if err != nil {
		return nil, err
	}

	elapsed := s.now().Sub(start)
	metrics.RecordRecommendation(rec, elapsed.Seconds())
	s.strategyLog.LogRecommendation(rec, cfg.RiskMode, durationMs(elapsed), false)
	if rec.RaceLevel == models.RaceLevelDecisive {
		s.strategyLog.LogDecisiveRace(race.RaceID, rec.BestBetType, rec.Recommendation.Budget, rec.Recommendation.KellyRecommendedAmount)
	}

	issued := &models.IssuedRecommendation{
		ID:             uuid.New(),
		CreatedAt:      s.now().UTC(),
		Recommendation: rec,
	}

	if s.recRepo != nil {
		if err := s.recRepo.Save(ctx, issued); err != nil {
			s.logger.WithError(err).WithField("race_id", race.RaceID).Warn("Failed to persist recommendation")
		} else {
			s.auditLog.LogRecommendationPersisted(issued.ID.String(), race.RaceID, rec.RaceLevel)
		}
	}
	if s.cache != nil {
		s.cache.Set(key, issued)
	}
	return issued, nil
}

// Get loads a previously issued recommendation
func (s *RecommendationService) Get(ctx context.Context, id uuid.UUID) (*models.IssuedRecommendation, error) {
	if s.recRepo == nil {
		return nil, models.ErrNotFound
	}
	return s.recRepo.GetByID(ctx, id)
}

func (s *RecommendationService) resolvePredictions(ctx context.Context, req AnalyzeRequest) ([]models.HorsePrediction, models.RaceContext, error) {
	race := models.RaceContext{RaceID: req.RaceID}
	if req.Race != nil {
		race = *req.Race
		if race.RaceID == "" {
			race.RaceID = req.RaceID
		}
	}

	if len(req.Predictions) > 0 {
		return req.Predictions, race, nil
	}
	if race.RaceID == "" {
		return nil, race, fmt.Errorf("%w: predictions or race_id is required", models.ErrInvalidInput)
	}
	if s.source == nil || !s.source.IsEnabled() {
		return nil, race, fmt.Errorf("%w: no prediction source configured", models.ErrPredictionsUnavailable)
	}

	start := s.now()
	fetched, err := s.source.FetchPredictions(ctx, race.RaceID)
	elapsed := s.now().Sub(start)
	metrics.RecordPredictionFetch(elapsed.Seconds(), err)

	horses := 0
	if fetched != nil {
		horses = len(fetched.Predictions)
	}
	s.strategyLog.LogPredictionFetch(race.RaceID, horses, durationMs(elapsed), err)

	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrPredictionsUnavailable) {
			return nil, race, err
		}
		return nil, race, fmt.Errorf("%w: %v", models.ErrPredictionsUnavailable, err)
	}
	if horses == 0 {
		return nil, race, fmt.Errorf("%w: race %s has no predictions", models.ErrNotFound, race.RaceID)
	}

	// Caller-supplied race fields win over the source's metadata.
	merged := fetched.Race
	if merged.RaceID == "" {
		merged.RaceID = race.RaceID
	}
	if req.Race != nil {
		if req.Race.Date != "" {
			merged.Date = req.Race.Date
		}
		if req.Race.RaceName != "" {
			merged.RaceName = req.Race.RaceName
		}
		if req.Race.Venue != "" {
			merged.Venue = req.Race.Venue
		}
		if req.Race.Class != "" {
			merged.Class = req.Race.Class
		}
	}
	return fetched.Predictions, merged, nil
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
