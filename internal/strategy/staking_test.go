package strategy

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keiba-advisor/internal/models"
)

func newStaking(t *testing.T, bankroll float64, mode models.RiskMode) *StakingStrategy {
	t.Helper()
	s, err := NewStakingStrategy(bankroll, mode, nil, nil)
	require.NoError(t, err)
	return s
}

func TestPerRaceLimit(t *testing.T) {
	tests := []struct {
		bankroll float64
		mode     models.RiskMode
		want     int64
	}{
		{10000, models.RiskModeConservative, 200},
		{10000, models.RiskModeBalanced, 350},
		{10000, models.RiskModeAggressive, 500},
		{12345, models.RiskModeBalanced, 432},
		{100000, models.RiskModeBalanced, 3500},
	}
	for _, tt := range tests {
		s := newStaking(t, tt.bankroll, tt.mode)
		assert.Equal(t, tt.want, s.PerRaceLimit(), "bankroll %v mode %s", tt.bankroll, tt.mode)
	}
}

func TestNewStakingStrategyRejectsBadBankroll(t *testing.T) {
	for _, bankroll := range []float64{0, -5000, math.NaN(), math.Inf(1)} {
		_, err := NewStakingStrategy(bankroll, models.RiskModeBalanced, nil, nil)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
}

func TestUnknownRiskModeFallsBackToBalanced(t *testing.T) {
	logger, hook := test.NewNullLogger()

	s, err := NewStakingStrategy(10000, models.RiskMode("reckless"), nil, logger)
	require.NoError(t, err)

	assert.Equal(t, models.RiskModeBalanced, s.RiskMode())
	assert.Equal(t, int64(350), s.PerRaceLimit())

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "Unknown risk mode, defaulting to balanced", hook.LastEntry().Message)
	assert.Equal(t, models.RiskMode("reckless"), hook.LastEntry().Data["risk_mode"])
}

func TestBudget(t *testing.T) {
	s := newStaking(t, 10000, models.RiskModeBalanced)

	assert.Equal(t, int64(0), s.Budget(models.RaceLevelSkip))
	assert.Equal(t, int64(140), s.Budget(models.RaceLevelNormal))
	assert.Equal(t, int64(280), s.Budget(models.RaceLevelDecisive))
}

func TestUnitPrice(t *testing.T) {
	tests := []struct {
		name     string
		bankroll float64
		level    models.RaceLevel
		want     int64
	}{
		{"decisive large limit", 200000, models.RaceLevelDecisive, 1000},
		{"decisive mid limit", 100000, models.RaceLevelDecisive, 500},
		{"decisive small limit", 10000, models.RaceLevelDecisive, 200},
		{"normal large limit", 200000, models.RaceLevelNormal, 200},
		{"normal small limit", 10000, models.RaceLevelNormal, 100},
		{"skip", 200000, models.RaceLevelSkip, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStaking(t, tt.bankroll, models.RiskModeBalanced)
			assert.Equal(t, tt.want, s.UnitPrice(tt.level, true))
			assert.Equal(t, BaseUnitPrice, s.UnitPrice(tt.level, false))
		})
	}
}

func TestPurchaseCount(t *testing.T) {
	rich := newStaking(t, 1000000, models.RiskModeBalanced)

	// normal budget 14000 at ¥200 allows 70 tickets, so the base count binds
	assert.Equal(t, int64(3), rich.PurchaseCount(models.RaceLevelNormal, 200, models.BetTypeSingle))
	assert.Equal(t, int64(10), rich.PurchaseCount(models.RaceLevelNormal, 200, models.BetTypeQuinella))
	assert.Equal(t, int64(20), rich.PurchaseCount(models.RaceLevelNormal, 200, models.BetTypeExacta))
	assert.Equal(t, int64(30), rich.PurchaseCount(models.RaceLevelNormal, 200, models.BetTypeTrifectaExact))

	// decisive budget 28000 at ¥1000 allows 28 tickets
	assert.Equal(t, int64(28), rich.PurchaseCount(models.RaceLevelDecisive, 1000, models.BetTypeTrifectaExact))

	assert.Equal(t, int64(0), rich.PurchaseCount(models.RaceLevelSkip, 100, models.BetTypeSingle))

	poor := newStaking(t, 1000, models.RiskModeBalanced)
	assert.Equal(t, int64(1), poor.PurchaseCount(models.RaceLevelNormal, 100, models.BetTypeSingle), "at least one ticket while budget is positive")
}

func TestKellyStake(t *testing.T) {
	s := newStaking(t, 100000, models.RiskModeBalanced)

	assert.Equal(t, int64(5000), s.KellyStake(0.5, 3.0), "capped at five percent")
	assert.Equal(t, int64(1000), s.KellyStake(0.2, 6.0))
	assert.Equal(t, int64(0), s.KellyStake(0.3, 3.0), "negative edge")
	assert.Equal(t, int64(0), s.KellyStake(0.5, 1.0), "even money")

	s.WithKelly(0.5, 0.1)
	assert.Equal(t, int64(2000), s.KellyStake(0.2, 6.0))
}

func TestEvaluateRaceLevel(t *testing.T) {
	s := newStaking(t, 100000, models.RiskModeBalanced)

	tests := []struct {
		name  string
		eval  models.ProEvaluation
		best  models.BestBetInfo
		minEV float64
		want  models.RaceLevel
	}{
		{
			name: "analyzer says skip",
			eval: models.ProEvaluation{RecommendedAction: models.ActionSkip, DifficultyScore: 0.9},
			best: models.BestBetInfo{MaxExpectedValue: 8},
			want: models.RaceLevelSkip,
		},
		{
			name:  "below minimum EV",
			eval:  models.ProEvaluation{RecommendedAction: models.ActionNormal, DifficultyScore: 0.5},
			best:  models.BestBetInfo{MaxExpectedValue: 1.3},
			minEV: 1.5,
			want:  models.RaceLevelSkip,
		},
		{
			name:  "predictable race",
			eval:  models.ProEvaluation{RecommendedAction: models.ActionGoForIt, DifficultyScore: 0.7},
			best:  models.BestBetInfo{MaxExpectedValue: 1.3},
			minEV: 1.2,
			want:  models.RaceLevelDecisive,
		},
		{
			name:  "high EV with solid probability",
			eval:  models.ProEvaluation{RecommendedAction: models.ActionNormal, DifficultyScore: 0.4},
			best:  models.BestBetInfo{MaxExpectedValue: 4.0, MaxProbability: 0.25},
			minEV: 1.2,
			want:  models.RaceLevelDecisive,
		},
		{
			name:  "high EV on a longshot",
			eval:  models.ProEvaluation{RecommendedAction: models.ActionNormal, DifficultyScore: 0.4},
			best:  models.BestBetInfo{MaxExpectedValue: 4.0, MaxProbability: 0.1},
			minEV: 1.2,
			want:  models.RaceLevelNormal,
		},
		{
			name:  "standalone EV",
			eval:  models.ProEvaluation{RecommendedAction: models.ActionNormal, DifficultyScore: 0.4},
			best:  models.BestBetInfo{MaxExpectedValue: 6.0, MaxProbability: 0.01},
			minEV: 1.2,
			want:  models.RaceLevelDecisive,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.EvaluateRaceLevel(tt.eval, tt.best, tt.minEV))
		})
	}
}

func TestPlan(t *testing.T) {
	s := newStaking(t, 100000, models.RiskModeBalanced)
	horse := models.HorsePrediction{HorseNo: 1, WinProbability: 0.5, Odds: 3}

	plan := s.Plan(models.RaceLevelNormal, models.BetTypeQuinella, true, &horse)
	assert.Equal(t, int64(200), plan.UnitPrice)
	assert.Equal(t, int64(7), plan.PurchaseCount)
	assert.Equal(t, int64(1400), plan.TotalCost)
	assert.Equal(t, int64(1400), plan.Budget)
	assert.Equal(t, int64(3500), plan.PerRaceLimit)
	assert.Equal(t, 100.0, plan.BudgetUsageRate)
	require.NotNil(t, plan.KellyRecommendedAmount)
	assert.Equal(t, int64(5000), *plan.KellyRecommendedAmount)

	skip := s.Plan(models.RaceLevelSkip, models.BetTypeSingle, true, nil)
	assert.Equal(t, int64(100), skip.UnitPrice)
	assert.Equal(t, int64(0), skip.PurchaseCount)
	assert.Equal(t, int64(0), skip.TotalCost)
	assert.Equal(t, 0.0, skip.BudgetUsageRate)
	assert.Nil(t, skip.KellyRecommendedAmount)
}

func TestWithKellyNeverLoosensCap(t *testing.T) {
	// raw Kelly for p=0.9 at odds 10 is about 0.89 of the bankroll
	loose := newStaking(t, 100000, models.RiskModeBalanced).WithKelly(1, 0.5)
	assert.Equal(t, int64(5000), loose.KellyStake(0.9, 10))

	tight := newStaking(t, 100000, models.RiskModeBalanced).WithKelly(1, 0.02)
	assert.Equal(t, int64(2000), tight.KellyStake(0.9, 10))
}

func TestQuoteKelly(t *testing.T) {
	tests := []struct {
		name      string
		p, o      float64
		wantRaw   float64
		wantFrac  float64
		wantStake int64
		wantEdge  bool
	}{
		{"capped", 0.5, 3, 0.25, 0.05, 500, true},
		{"fractional", 0.3, 4, 0.0667, 0.0167, 166, true},
		{"no edge", 0.2, 4, 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := QuoteKelly(tt.p, tt.o, 10000, DefaultKellyFraction, DefaultKellyCap)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRaw, q.RawFraction)
			assert.Equal(t, tt.wantFrac, q.Fraction)
			assert.Equal(t, tt.wantStake, q.Stake)
			assert.Equal(t, tt.wantEdge, q.HasPositiveEdge)
		})
	}

	_, err := QuoteKelly(1.2, 3, 10000, DefaultKellyFraction, DefaultKellyCap)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, err = QuoteKelly(0.5, 3, 0, DefaultKellyFraction, DefaultKellyCap)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
