package strategy

import (
	"sort"

	"github.com/yourusername/keiba-advisor/internal/models"
)

// GeneratorConfig controls how many horses feed each bet type and how long
// the ordered lists may grow
type GeneratorConfig struct {
	SingleTopN            int
	ComboTopN             int
	ExactaLimit           int
	TrifectaExactLimit    int
	ExactaOrderDiscount   float64
	TrifectaOrderDiscount float64
}

// DefaultGeneratorConfig returns the stock candidate limits
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		SingleTopN:            3,
		ComboTopN:             5,
		ExactaLimit:           20,
		TrifectaExactLimit:    30,
		ExactaOrderDiscount:   0.5,
		TrifectaOrderDiscount: 0.3,
	}
}

// CombinationGenerator enumerates ranked bet candidates per bet type.
// Joint probabilities are products of marginal win probabilities, not a
// finishing-order model.
type CombinationGenerator struct {
	cfg GeneratorConfig
}

// NewCombinationGenerator creates a generator, falling back to defaults for unset limits
func NewCombinationGenerator(cfg GeneratorConfig) *CombinationGenerator {
	def := DefaultGeneratorConfig()
	if cfg.SingleTopN <= 0 {
		cfg.SingleTopN = def.SingleTopN
	}
	if cfg.ComboTopN <= 0 {
		cfg.ComboTopN = def.ComboTopN
	}
	if cfg.ExactaLimit <= 0 {
		cfg.ExactaLimit = def.ExactaLimit
	}
	if cfg.TrifectaExactLimit <= 0 {
		cfg.TrifectaExactLimit = def.TrifectaExactLimit
	}
	if cfg.ExactaOrderDiscount <= 0 {
		cfg.ExactaOrderDiscount = def.ExactaOrderDiscount
	}
	if cfg.TrifectaOrderDiscount <= 0 {
		cfg.TrifectaOrderDiscount = def.TrifectaOrderDiscount
	}
	return &CombinationGenerator{cfg: cfg}
}

// Config returns the effective limits
func (g *CombinationGenerator) Config() GeneratorConfig {
	return g.cfg
}

// GenerateAll builds the candidate list of every supported bet type
func (g *CombinationGenerator) GenerateAll(predictions []models.HorsePrediction) map[models.BetType][]models.BetCandidate {
	result := make(map[models.BetType][]models.BetCandidate, len(models.BetTypes))
	for _, bt := range models.BetTypes {
		result[bt] = g.Generate(bt, predictions)
	}
	return result
}

// Generate builds the candidate list for one bet type, sorted by descending EV
func (g *CombinationGenerator) Generate(betType models.BetType, predictions []models.HorsePrediction) []models.BetCandidate {
	switch betType {
	case models.BetTypeSingle:
		return g.Single(predictions)
	case models.BetTypeQuinella:
		return g.Quinella(predictions)
	case models.BetTypeWide:
		return g.Wide(predictions)
	case models.BetTypeTrifectaBox:
		return g.TrifectaBox(predictions)
	case models.BetTypeExacta:
		return g.Exacta(predictions)
	case models.BetTypeTrifectaExact:
		return g.TrifectaExact(predictions)
	default:
		return nil
	}
}

// Single returns one win-only candidate for each of the top horses by EV
func (g *CombinationGenerator) Single(predictions []models.HorsePrediction) []models.BetCandidate {
	top := topByExpectedValue(predictions, g.cfg.SingleTopN)
	candidates := make([]models.BetCandidate, 0, len(top))
	for _, h := range top {
		c := models.NewBetCandidate(models.BetTypeSingle, []int{h.HorseNo}, h.ExpectedValue, h.WinProbability)
		odds := h.Odds
		c.Odds = &odds
		candidates = append(candidates, c)
	}
	return candidates
}

// Quinella returns every unordered pair of the top horses.
// EV is the mean of both horses' EVs; probability is the product of their win probabilities.
func (g *CombinationGenerator) Quinella(predictions []models.HorsePrediction) []models.BetCandidate {
	return g.pairs(models.BetTypeQuinella, predictions)
}

// Wide is priced identically to Quinella
func (g *CombinationGenerator) Wide(predictions []models.HorsePrediction) []models.BetCandidate {
	return g.pairs(models.BetTypeWide, predictions)
}

func (g *CombinationGenerator) pairs(betType models.BetType, predictions []models.HorsePrediction) []models.BetCandidate {
	top := topByExpectedValue(predictions, g.cfg.ComboTopN)
	var candidates []models.BetCandidate
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			h1, h2 := top[i], top[j]
			candidates = append(candidates, models.NewBetCandidate(
				betType,
				[]int{h1.HorseNo, h2.HorseNo},
				(h1.ExpectedValue+h2.ExpectedValue)/2,
				h1.WinProbability*h2.WinProbability,
			))
		}
	}
	return sortCandidates(candidates, 0)
}

// TrifectaBox returns every unordered triple of the top horses. A box covers
// all six finishing orders, so probability is the sum over the permutations.
func (g *CombinationGenerator) TrifectaBox(predictions []models.HorsePrediction) []models.BetCandidate {
	top := topByExpectedValue(predictions, g.cfg.ComboTopN)
	var candidates []models.BetCandidate
	for i := 0; i < len(top); i++ {
		for j := i + 1; j < len(top); j++ {
			for k := j + 1; k < len(top); k++ {
				h1, h2, h3 := top[i], top[j], top[k]
				product := h1.WinProbability * h2.WinProbability * h3.WinProbability
				candidates = append(candidates, models.NewBetCandidate(
					models.BetTypeTrifectaBox,
					[]int{h1.HorseNo, h2.HorseNo, h3.HorseNo},
					(h1.ExpectedValue+h2.ExpectedValue+h3.ExpectedValue)/3,
					permutationsOfThree*product,
				))
			}
		}
	}
	return sortCandidates(candidates, 0)
}

// Exacta returns every ordered pair of the top horses with an order-uncertainty discount
func (g *CombinationGenerator) Exacta(predictions []models.HorsePrediction) []models.BetCandidate {
	top := topByExpectedValue(predictions, g.cfg.ComboTopN)
	var candidates []models.BetCandidate
	for i := range top {
		for j := range top {
			if i == j {
				continue
			}
			h1, h2 := top[i], top[j]
			candidates = append(candidates, models.NewBetCandidate(
				models.BetTypeExacta,
				[]int{h1.HorseNo, h2.HorseNo},
				(h1.ExpectedValue+h2.ExpectedValue)/2,
				h1.WinProbability*h2.WinProbability*g.cfg.ExactaOrderDiscount,
			))
		}
	}
	return sortCandidates(candidates, g.cfg.ExactaLimit)
}

// TrifectaExact returns every ordered triple of the top horses with an order-uncertainty discount
func (g *CombinationGenerator) TrifectaExact(predictions []models.HorsePrediction) []models.BetCandidate {
	top := topByExpectedValue(predictions, g.cfg.ComboTopN)
	var candidates []models.BetCandidate
	for i := range top {
		for j := range top {
			if j == i {
				continue
			}
			for k := range top {
				if k == i || k == j {
					continue
				}
				h1, h2, h3 := top[i], top[j], top[k]
				candidates = append(candidates, models.NewBetCandidate(
					models.BetTypeTrifectaExact,
					[]int{h1.HorseNo, h2.HorseNo, h3.HorseNo},
					(h1.ExpectedValue+h2.ExpectedValue+h3.ExpectedValue)/3,
					h1.WinProbability*h2.WinProbability*h3.WinProbability*g.cfg.TrifectaOrderDiscount,
				))
			}
		}
	}
	return sortCandidates(candidates, g.cfg.TrifectaExactLimit)
}

const permutationsOfThree = 6

// topByExpectedValue returns up to n predictions ordered by descending EV.
// Equal EVs keep their input order.
func topByExpectedValue(predictions []models.HorsePrediction, n int) []models.HorsePrediction {
	ranked := sortByExpectedValue(predictions)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func sortByExpectedValue(predictions []models.HorsePrediction) []models.HorsePrediction {
	ranked := make([]models.HorsePrediction, len(predictions))
	copy(ranked, predictions)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ExpectedValue > ranked[j].ExpectedValue
	})
	return ranked
}

func sortCandidates(candidates []models.BetCandidate, limit int) []models.BetCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ExpectedValue > candidates[j].ExpectedValue
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	if candidates == nil {
		return []models.BetCandidate{}
	}
	return candidates
}
