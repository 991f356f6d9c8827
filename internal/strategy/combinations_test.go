package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keiba-advisor/internal/models"
)

func fieldOfEight(t *testing.T) []models.HorsePrediction {
	t.Helper()
	annotated, err := AnnotateExpectedValue([]models.HorsePrediction{
		{HorseNo: 1, WinProbability: 0.20, Odds: 7},
		{HorseNo: 2, WinProbability: 0.18, Odds: 8},
		{HorseNo: 3, WinProbability: 0.15, Odds: 9},
		{HorseNo: 4, WinProbability: 0.12, Odds: 10},
		{HorseNo: 5, WinProbability: 0.10, Odds: 12},
		{HorseNo: 6, WinProbability: 0.10, Odds: 15},
		{HorseNo: 7, WinProbability: 0.08, Odds: 20},
		{HorseNo: 8, WinProbability: 0.07, Odds: 25},
	})
	require.NoError(t, err)
	return annotated
}

func assertSortedByEV(t *testing.T, candidates []models.BetCandidate) {
	t.Helper()
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].ExpectedValue, candidates[i].ExpectedValue,
			"candidate %d (%s) out of order", i, candidates[i].Combination)
	}
}

func TestCombinationCounts(t *testing.T) {
	g := NewCombinationGenerator(DefaultGeneratorConfig())
	preds := fieldOfEight(t)

	tests := []struct {
		betType models.BetType
		want    int
	}{
		{models.BetTypeSingle, 3},
		{models.BetTypeQuinella, 10},
		{models.BetTypeWide, 10},
		{models.BetTypeTrifectaBox, 10},
		{models.BetTypeExacta, 20},
		{models.BetTypeTrifectaExact, 30},
	}

	for _, tt := range tests {
		t.Run(string(tt.betType), func(t *testing.T) {
			candidates := g.Generate(tt.betType, preds)
			assert.Len(t, candidates, tt.want)
			assertSortedByEV(t, candidates)

			seen := map[string]bool{}
			for _, c := range candidates {
				assert.Equal(t, tt.betType, c.BetType)
				assert.False(t, seen[c.Combination], "duplicate combination %s", c.Combination)
				seen[c.Combination] = true
			}
		})
	}
}

func TestTrifectaExactTruncatesSixtyPermutations(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.TrifectaExactLimit = 1000
	g := NewCombinationGenerator(cfg)

	all := g.TrifectaExact(fieldOfEight(t))
	assert.Len(t, all, 60)

	truncated := NewCombinationGenerator(DefaultGeneratorConfig()).TrifectaExact(fieldOfEight(t))
	require.Len(t, truncated, 30)
	assert.Equal(t, all[:30], truncated)
}

func TestCandidatesUseTopHorsesByEV(t *testing.T) {
	g := NewCombinationGenerator(DefaultGeneratorConfig())
	preds := fieldOfEight(t)

	singles := g.Single(preds)
	require.Len(t, singles, 3)
	assert.Equal(t, []int{8}, singles[0].Horses)
	assert.Equal(t, []int{7}, singles[1].Horses)
	assert.Equal(t, []int{6}, singles[2].Horses)
	require.NotNil(t, singles[0].Odds)
	assert.Equal(t, 25.0, *singles[0].Odds)
	assert.InDelta(t, 0.07, singles[0].Probability, 1e-12)

	top5 := map[int]bool{8: true, 7: true, 6: true, 2: true, 1: true}
	for _, c := range g.TrifectaExact(preds) {
		for _, h := range c.Horses {
			assert.True(t, top5[h], "horse %d is not in the top five", h)
		}
	}
}

func TestCandidateProbabilities(t *testing.T) {
	g := NewCombinationGenerator(DefaultGeneratorConfig())
	preds, err := AnnotateExpectedValue([]models.HorsePrediction{
		{HorseNo: 1, WinProbability: 0.5, Odds: 4},
		{HorseNo: 2, WinProbability: 0.3, Odds: 5},
		{HorseNo: 3, WinProbability: 0.25, Odds: 4},
	})
	require.NoError(t, err)

	quinella := g.Quinella(preds)
	require.Len(t, quinella, 3)
	assert.Equal(t, "1-2", quinella[0].Combination)
	assert.InDelta(t, (2.0+1.5)/2, quinella[0].ExpectedValue, 1e-9)
	assert.InDelta(t, 0.15, quinella[0].Probability, 1e-12)

	box := g.TrifectaBox(preds)
	require.Len(t, box, 1)
	assert.Equal(t, []int{1, 2, 3}, box[0].Horses)
	assert.InDelta(t, 6*0.5*0.3*0.25, box[0].Probability, 1e-12)

	exacta := g.Exacta(preds)
	require.Len(t, exacta, 6)
	assert.Equal(t, "1→2", exacta[0].Combination)
	assert.Equal(t, "2→1", exacta[1].Combination, "equal EVs keep enumeration order")
	assert.InDelta(t, 0.5*0.3*0.5, exacta[0].Probability, 1e-12)

	trifecta := g.TrifectaExact(preds)
	require.Len(t, trifecta, 6)
	assert.Equal(t, "1→2→3", trifecta[0].Combination)
	assert.InDelta(t, 0.5*0.3*0.25*0.3, trifecta[0].Probability, 1e-12)
}

func TestGenerateWithSmallField(t *testing.T) {
	g := NewCombinationGenerator(DefaultGeneratorConfig())
	preds, err := AnnotateExpectedValue([]models.HorsePrediction{
		{HorseNo: 1, WinProbability: 0.6, Odds: 2},
		{HorseNo: 2, WinProbability: 0.4, Odds: 3},
	})
	require.NoError(t, err)

	all := g.GenerateAll(preds)
	assert.Len(t, all, len(models.BetTypes))
	assert.Len(t, all[models.BetTypeSingle], 2)
	assert.Len(t, all[models.BetTypeQuinella], 1)
	assert.Len(t, all[models.BetTypeExacta], 2)
	assert.NotNil(t, all[models.BetTypeTrifectaBox])
	assert.Empty(t, all[models.BetTypeTrifectaBox])
	assert.Empty(t, all[models.BetTypeTrifectaExact])
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewCombinationGenerator(DefaultGeneratorConfig())
	preds := fieldOfEight(t)
	assert.Equal(t, g.GenerateAll(preds), g.GenerateAll(preds))
}

func TestNewCombinationGeneratorFillsDefaults(t *testing.T) {
	g := NewCombinationGenerator(GeneratorConfig{ComboTopN: 4})
	cfg := g.Config()
	assert.Equal(t, 3, cfg.SingleTopN)
	assert.Equal(t, 4, cfg.ComboTopN)
	assert.Equal(t, 20, cfg.ExactaLimit)
	assert.Equal(t, 30, cfg.TrifectaExactLimit)
	assert.Equal(t, 0.5, cfg.ExactaOrderDiscount)
	assert.Equal(t, 0.3, cfg.TrifectaOrderDiscount)

	assert.Len(t, g.Quinella(fieldOfEight(t)), 6)
}
