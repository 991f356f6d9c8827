package strategy

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// StakingStrategy converts a bankroll and risk profile into per-race stake plans
type StakingStrategy struct {
	bankroll      decimal.Decimal
	riskMode      models.RiskMode
	riskFraction  decimal.Decimal
	perRaceLimit  int64
	kellyFraction float64
	kellyCap      float64
	allocation    map[models.RaceLevel]float64
	baseCounts    map[models.BetType]int64
	unitTiers     map[models.RaceLevel][]unitPriceTier
}

// NewStakingStrategy creates a staking strategy. An unknown risk mode falls
// back to balanced and is reported through the logger.
func NewStakingStrategy(bankroll float64, mode models.RiskMode, fractions RiskFractions, logger logrus.FieldLogger) (*StakingStrategy, error) {
	if math.IsNaN(bankroll) || math.IsInf(bankroll, 0) || bankroll <= 0 {
		return nil, fmt.Errorf("%w: bankroll must be positive, got %v", models.ErrInvalidInput, bankroll)
	}
	if fractions == nil {
		fractions = DefaultRiskFractions()
	}

	rate, ok := fractions[mode]
	if !ok {
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"risk_mode": mode,
				"fallback":  models.RiskModeBalanced,
			}).Warn("Unknown risk mode, defaulting to balanced")
		}
		mode = models.RiskModeBalanced
		rate, ok = fractions[mode]
		if !ok {
			rate = DefaultRiskFractions()[mode]
		}
	}

	bank := decimal.NewFromFloat(bankroll)
	riskFraction := decimal.NewFromFloat(rate)

	return &StakingStrategy{
		bankroll:      bank,
		riskMode:      mode,
		riskFraction:  riskFraction,
		perRaceLimit:  bank.Mul(riskFraction).Floor().IntPart(),
		kellyFraction: DefaultKellyFraction,
		kellyCap:      DefaultKellyCap,
		allocation:    budgetAllocation(),
		baseCounts:    baseCounts(),
		unitTiers:     unitPriceTiers(),
	}, nil
}

// WithKelly overrides the fractional Kelly multiplier and bankroll cap.
// The cap can only tighten DefaultKellyCap.
func (s *StakingStrategy) WithKelly(fraction, maxFraction float64) *StakingStrategy {
	if fraction > 0 {
		s.kellyFraction = fraction
	}
	if maxFraction > 0 && maxFraction <= DefaultKellyCap {
		s.kellyCap = maxFraction
	}
	return s
}

// RiskMode returns the effective risk mode after any fallback
func (s *StakingStrategy) RiskMode() models.RiskMode {
	return s.riskMode
}

// PerRaceLimit returns floor(bankroll * risk fraction)
func (s *StakingStrategy) PerRaceLimit() int64 {
	return s.perRaceLimit
}

// EvaluateRaceLevel classifies a race as skip, normal or decisive
func (s *StakingStrategy) EvaluateRaceLevel(eval models.ProEvaluation, best models.BestBetInfo, minEV float64) models.RaceLevel {
	if eval.RecommendedAction == models.ActionSkip {
		return models.RaceLevelSkip
	}
	if best.MaxExpectedValue < minEV {
		return models.RaceLevelSkip
	}

	decisive := eval.DifficultyScore >= decisiveDifficulty ||
		(best.MaxExpectedValue >= decisiveEV && best.MaxProbability >= decisiveMinProbability) ||
		best.MaxExpectedValue >= decisiveStandaloneEV
	if decisive {
		return models.RaceLevelDecisive
	}
	return models.RaceLevelNormal
}

// BudgetAllocation returns the share of the per-race limit committed at a level
func (s *StakingStrategy) BudgetAllocation(level models.RaceLevel) float64 {
	if rate, ok := s.allocation[level]; ok {
		return rate
	}
	return s.allocation[models.RaceLevelNormal]
}

// Budget returns floor(per-race limit * allocation)
func (s *StakingStrategy) Budget(level models.RaceLevel) int64 {
	return decimal.NewFromInt(s.perRaceLimit).
		Mul(decimal.NewFromFloat(s.BudgetAllocation(level))).
		Floor().
		IntPart()
}

// UnitPrice picks the ticket price for a level. Without dynamic pricing every ticket costs the base price.
func (s *StakingStrategy) UnitPrice(level models.RaceLevel, dynamic bool) int64 {
	if !dynamic {
		return BaseUnitPrice
	}
	tiers, ok := s.unitTiers[level]
	if !ok {
		tiers = s.unitTiers[models.RaceLevelNormal]
	}
	for _, tier := range tiers {
		if s.perRaceLimit >= tier.MinLimit {
			return tier.UnitPrice
		}
	}
	return BaseUnitPrice
}

// PurchaseCount returns min(base count, budget / unit price), at least one ticket whenever budget is positive
func (s *StakingStrategy) PurchaseCount(level models.RaceLevel, unitPrice int64, betType models.BetType) int64 {
	budget := s.Budget(level)
	if budget <= 0 || unitPrice <= 0 {
		return 0
	}

	base, ok := s.baseCounts[betType]
	if !ok {
		base = defaultBaseCount
	}
	count := budget / unitPrice
	if count > base {
		count = base
	}
	if count < 1 {
		count = 1
	}
	return count
}

// KellyStake returns the advisory fractional-Kelly stake, never above the cap share of bankroll
func (s *StakingStrategy) KellyStake(probability, odds float64) int64 {
	f := FractionalKelly(probability, odds, s.kellyFraction, s.kellyCap)
	if f <= 0 {
		return 0
	}
	return s.bankroll.Mul(decimal.NewFromFloat(f)).Floor().IntPart()
}

// Plan builds the stake plan for a classified race. kellyHorse is nil when Kelly sizing is disabled.
func (s *StakingStrategy) Plan(level models.RaceLevel, betType models.BetType, dynamicUnit bool, kellyHorse *models.HorsePrediction) models.StakePlan {
	unitPrice := s.UnitPrice(level, dynamicUnit)
	count := s.PurchaseCount(level, unitPrice, betType)
	budget := s.Budget(level)
	totalCost := count * unitPrice

	plan := models.StakePlan{
		UnitPrice:     unitPrice,
		PurchaseCount: count,
		TotalCost:     totalCost,
		Budget:        budget,
		PerRaceLimit:  s.perRaceLimit,
	}
	if budget > 0 {
		plan.BudgetUsageRate = decimal.NewFromInt(totalCost).
			Div(decimal.NewFromInt(budget)).
			Mul(decimal.NewFromInt(100)).
			Round(1).
			InexactFloat64()
	}
	if kellyHorse != nil {
		stake := s.KellyStake(kellyHorse.WinProbability, kellyHorse.Odds)
		plan.KellyRecommendedAmount = &stake
	}
	return plan
}

// KellyQuote is a standalone Kelly sizing for one selection
type KellyQuote struct {
	Probability     float64 `json:"probability"`
	Odds            float64 `json:"odds"`
	Bankroll        float64 `json:"bankroll"`
	RawFraction     float64 `json:"raw_fraction"`
	Fraction        float64 `json:"fraction"`
	Stake           int64   `json:"stake"`
	ExpectedValue   float64 `json:"expected_value"`
	HasPositiveEdge bool    `json:"has_positive_edge"`
}

// QuoteKelly sizes a stake for one selection with the given fractional Kelly settings
func QuoteKelly(probability, odds, bankroll, fraction, maxFraction float64) (KellyQuote, error) {
	if err := ValidateProbability(probability); err != nil {
		return KellyQuote{}, err
	}
	if err := ValidateOdds(odds); err != nil {
		return KellyQuote{}, err
	}
	if math.IsNaN(bankroll) || bankroll <= 0 {
		return KellyQuote{}, fmt.Errorf("%w: bankroll must be positive, got %v", models.ErrInvalidInput, bankroll)
	}

	f := FractionalKelly(probability, odds, fraction, maxFraction)
	return KellyQuote{
		Probability:     probability,
		Odds:            odds,
		Bankroll:        bankroll,
		RawFraction:     models.RoundTo(KellyFraction(probability, odds), 4),
		Fraction:        models.RoundTo(f, 4),
		Stake:           decimal.NewFromFloat(bankroll).Mul(decimal.NewFromFloat(f)).Floor().IntPart(),
		ExpectedValue:   models.RoundTo(probability*odds, 4),
		HasPositiveEdge: probability*odds > 1,
	}, nil
}
