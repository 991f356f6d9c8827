package strategy

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/keiba-advisor/internal/models"
)

var _ Engine = (*Recommender)(nil)

// Recommender orchestrates annotation, analysis, candidate generation and staking for one race
type Recommender struct {
	cfg       EngineConfig
	generator *CombinationGenerator
	analyzer  *RaceAnalyzer
	logger    *logrus.Logger
}

// NewRecommender creates a recommender. It holds no per-race state and is safe for concurrent use.
func NewRecommender(cfg EngineConfig, analyzer *RaceAnalyzer, logger *logrus.Logger) *Recommender {
	if cfg.RiskFractions == nil {
		cfg.RiskFractions = DefaultRiskFractions()
	}
	if cfg.KellyFraction <= 0 {
		cfg.KellyFraction = DefaultKellyFraction
	}
	if cfg.KellyCap <= 0 || cfg.KellyCap > DefaultKellyCap {
		cfg.KellyCap = DefaultKellyCap
	}
	if analyzer == nil {
		analyzer = NewRaceAnalyzer()
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Recommender{
		cfg:       cfg,
		generator: NewCombinationGenerator(cfg.Generator),
		analyzer:  analyzer,
		logger:    logger,
	}
}

// Recommend produces a fresh Recommendation. It fails only with ErrInvalidInput;
// a race without a viable bet comes back as a skip-level plan with zero cost.
func (r *Recommender) Recommend(predictions []models.HorsePrediction, race models.RaceContext, cfg models.StrategyConfig) (*models.Recommendation, error) {
	start := time.Now()

	if math.IsNaN(cfg.MinExpectedValue) {
		return nil, fmt.Errorf("%w: min_expected_value must be a number", models.ErrInvalidInput)
	}
	annotated, err := AnnotateExpectedValue(predictions)
	if err != nil {
		return nil, err
	}
	staking, err := NewStakingStrategy(cfg.Bankroll, cfg.RiskMode, r.cfg.RiskFractions, r.logger.WithField("race_id", race.RaceID))
	if err != nil {
		return nil, err
	}
	staking.WithKelly(r.cfg.KellyFraction, r.cfg.KellyCap)

	eval := r.analyzer.Evaluate(annotated, race)
	betTypes := r.generator.GenerateAll(annotated)
	bestType, bestInfo := SelectBestBetType(betTypes)

	level := staking.EvaluateRaceLevel(eval, bestInfo, cfg.MinExpectedValue)

	var kellyHorse *models.HorsePrediction
	if cfg.UseKelly {
		top := highestExpectedValue(annotated)
		kellyHorse = &top
	}
	plan := staking.Plan(level, bestType, cfg.DynamicUnit, kellyHorse)
	plan.StrategyExplanation = Explain(level, bestType, plan.PurchaseCount, plan.UnitPrice, eval)

	rec := &models.Recommendation{
		RaceInfo:       race,
		ProEvaluation:  eval,
		Predictions:    sortByExpectedValue(annotated),
		BetTypes:       betTypes,
		BestBetType:    bestType,
		BestBetInfo:    bestInfo,
		RaceLevel:      level,
		Recommendation: plan,
	}

	r.logger.WithFields(logrus.Fields{
		"race_id":        race.RaceID,
		"race_level":     level,
		"best_bet_type":  bestType,
		"max_ev":         bestInfo.MaxExpectedValue,
		"difficulty":     eval.DifficultyScore,
		"risk_mode":      staking.RiskMode(),
		"purchase_count": plan.PurchaseCount,
		"total_cost":     plan.TotalCost,
		"duration_ms":    float64(time.Since(start).Microseconds()) / 1000,
	}).Debug("Recommendation computed")

	return rec, nil
}

// SelectBestBetType picks the bet type whose best candidate has the highest EV.
// Ties go to the type evaluated first; with no positive EV anywhere the single
// pool is returned with zeroed statistics.
func SelectBestBetType(betTypes map[models.BetType][]models.BetCandidate) (models.BetType, models.BestBetInfo) {
	best := models.BetType("")
	info := models.BestBetInfo{}
	bestEV := 0.0

	for _, bt := range models.BetTypes {
		candidates := betTypes[bt]
		if len(candidates) == 0 {
			continue
		}

		sum, maxEV, maxProb := 0.0, candidates[0].ExpectedValue, candidates[0].Probability
		for _, c := range candidates {
			sum += c.ExpectedValue
			maxEV = math.Max(maxEV, c.ExpectedValue)
			maxProb = math.Max(maxProb, c.Probability)
		}

		if maxEV > bestEV {
			best = bt
			bestEV = maxEV
			info = models.BestBetInfo{
				AverageExpectedValue: models.RoundTo(sum/float64(len(candidates)), 2),
				MaxExpectedValue:     models.RoundTo(maxEV, 2),
				CandidateCount:       len(candidates),
				MaxProbability:       models.RoundTo(maxProb, 4),
			}
		}
	}

	if best == "" {
		best = models.BetTypeSingle
	}
	return best, info
}

// highestExpectedValue returns the first horse with the maximum EV
func highestExpectedValue(predictions []models.HorsePrediction) models.HorsePrediction {
	top := predictions[0]
	for _, p := range predictions[1:] {
		if p.ExpectedValue > top.ExpectedValue {
			top = p
		}
	}
	return top
}
