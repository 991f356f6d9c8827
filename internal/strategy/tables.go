package strategy

import (
	"time"

	"github.com/yourusername/keiba-advisor/internal/models"
)

// Lookup tables are returned as fresh copies so callers cannot mutate shared state.

// SeasonTable maps a calendar month to a seasonal multiplier
type SeasonTable map[time.Month]float64

// DefaultSeasonTable returns spring 1.10, summer 0.90, autumn 1.05, winter 1.00
func DefaultSeasonTable() SeasonTable {
	multipliers := map[models.Season]float64{
		models.SeasonSpring: 1.10,
		models.SeasonSummer: 0.90,
		models.SeasonAutumn: 1.05,
		models.SeasonWinter: 1.00,
	}
	table := make(SeasonTable, 12)
	for m := time.January; m <= time.December; m++ {
		table[m] = multipliers[models.SeasonOf(m)]
	}
	return table
}

// JockeyTable maps a jockey name to a historical recovery rate
type JockeyTable map[string]float64

// DefaultJockeyTable returns the jockeys with above-average recovery rates
func DefaultJockeyTable() JockeyTable {
	return JockeyTable{
		"武豊":     1.25,
		"川田将雅":   1.22,
		"C.ルメール": 1.28,
		"横山武史":   1.18,
		"福永祐一":   1.20,
	}
}

// RiskFractions maps a risk mode to the share of bankroll one race may use
type RiskFractions map[models.RiskMode]float64

// DefaultRiskFractions returns conservative 2%, balanced 3.5%, aggressive 5%
func DefaultRiskFractions() RiskFractions {
	return RiskFractions{
		models.RiskModeConservative: 0.02,
		models.RiskModeBalanced:     0.035,
		models.RiskModeAggressive:   0.05,
	}
}

func budgetAllocation() map[models.RaceLevel]float64 {
	return map[models.RaceLevel]float64{
		models.RaceLevelSkip:     0.0,
		models.RaceLevelNormal:   0.4,
		models.RaceLevelDecisive: 0.8,
	}
}

func baseCounts() map[models.BetType]int64 {
	return map[models.BetType]int64{
		models.BetTypeSingle:        3,
		models.BetTypeQuinella:      10,
		models.BetTypeWide:          10,
		models.BetTypeTrifectaBox:   10,
		models.BetTypeExacta:        20,
		models.BetTypeTrifectaExact: 30,
	}
}

// unitPriceTier picks a unit price once the per-race limit reaches MinLimit
type unitPriceTier struct {
	MinLimit  int64
	UnitPrice int64
}

// Tiers are ordered from the highest limit down; the last tier is the floor.
func unitPriceTiers() map[models.RaceLevel][]unitPriceTier {
	return map[models.RaceLevel][]unitPriceTier{
		models.RaceLevelSkip: {
			{MinLimit: 0, UnitPrice: BaseUnitPrice},
		},
		models.RaceLevelNormal: {
			{MinLimit: 3000, UnitPrice: 200},
			{MinLimit: 0, UnitPrice: 100},
		},
		models.RaceLevelDecisive: {
			{MinLimit: 5000, UnitPrice: 1000},
			{MinLimit: 3000, UnitPrice: 500},
			{MinLimit: 0, UnitPrice: 200},
		},
	}
}

const (
	// BaseUnitPrice is the minimum ticket price
	BaseUnitPrice int64 = 100

	DefaultKellyFraction = 0.25
	DefaultKellyCap      = 0.05

	defaultBaseCount int64 = 10

	favoredJockeyBonus = 1.15
	favoredJockeyTopN  = 3

	darkHorseFirstRank = 4
	darkHorseLastRank  = 9
	darkHorseMinEV     = 2.5
	darkHorseMinOdds   = 8.0

	goForItDifficulty = 0.7
	goForItMaxEV      = 3.0
	skipMaxEV         = 1.2
	skipDifficulty    = 0.3

	decisiveDifficulty     = 0.7
	decisiveEV             = 4.0
	decisiveMinProbability = 0.25
	decisiveStandaloneEV   = 6.0
)
