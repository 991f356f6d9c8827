package strategy

import (
	"math"
	"sort"

	"github.com/yourusername/keiba-advisor/internal/models"
)

// RaceAnalyzer scores how predictable a race is and derives contextual modifiers
type RaceAnalyzer struct {
	seasons SeasonTable
	jockeys JockeyTable
}

// NewRaceAnalyzer creates an analyzer with the stock season and jockey tables
func NewRaceAnalyzer() *RaceAnalyzer {
	return NewRaceAnalyzerWithTables(DefaultSeasonTable(), DefaultJockeyTable())
}

// NewRaceAnalyzerWithTables creates an analyzer with caller-supplied tables
func NewRaceAnalyzerWithTables(seasons SeasonTable, jockeys JockeyTable) *RaceAnalyzer {
	s := make(SeasonTable, len(seasons))
	for k, v := range seasons {
		s[k] = v
	}
	j := make(JockeyTable, len(jockeys))
	for k, v := range jockeys {
		j[k] = v
	}
	return &RaceAnalyzer{seasons: s, jockeys: j}
}

// DifficultyScore blends the spread of win probabilities with how far the
// favorite stands above the field. 1.0 means one horse clearly stands out.
func (a *RaceAnalyzer) DifficultyScore(predictions []models.HorsePrediction) float64 {
	if len(predictions) == 0 {
		return 0
	}

	n := float64(len(predictions))
	sum, maxProb := 0.0, math.Inf(-1)
	for _, p := range predictions {
		sum += p.WinProbability
		maxProb = math.Max(maxProb, p.WinProbability)
	}
	mean := sum / n

	variance := 0.0
	for _, p := range predictions {
		d := p.WinProbability - mean
		variance += d * d
	}
	stdDev := math.Sqrt(variance / n)

	concentration := maxProb / (mean + 1e-6)
	return clamp01((stdDev*10 + concentration/5) / 2)
}

// DetectDarkHorse returns the first horse ranked 4th-9th by market price whose
// EV and odds both clear the dark-horse thresholds
func (a *RaceAnalyzer) DetectDarkHorse(predictions []models.HorsePrediction) *models.DarkHorse {
	byOdds := make([]models.HorsePrediction, len(predictions))
	copy(byOdds, predictions)
	sort.SliceStable(byOdds, func(i, j int) bool {
		return byOdds[i].Odds < byOdds[j].Odds
	})

	for rank := darkHorseFirstRank; rank <= darkHorseLastRank && rank <= len(byOdds); rank++ {
		h := byOdds[rank-1]
		if h.ExpectedValue >= darkHorseMinEV && h.Odds >= darkHorseMinOdds {
			return &models.DarkHorse{
				HorseNo:       h.HorseNo,
				HorseName:     h.HorseName,
				Odds:          h.Odds,
				ExpectedValue: h.ExpectedValue,
				Popularity:    rank,
			}
		}
	}
	return nil
}

// SeasonBonus returns the seasonal multiplier for the race date, 1.0 when the date is unusable
func (a *RaceAnalyzer) SeasonBonus(race models.RaceContext) float64 {
	date, ok := race.ParseDate()
	if !ok {
		return 1.0
	}
	if bonus, ok := a.seasons[date.Month()]; ok {
		return bonus
	}
	return 1.0
}

// JockeyBonus checks whether a favored jockey rides one of the top horses by EV
func (a *RaceAnalyzer) JockeyBonus(predictions []models.HorsePrediction) models.JockeyBonus {
	result := models.JockeyBonus{Jockeys: []models.JockeyMatch{}, Bonus: 1.0}
	for _, h := range topByExpectedValue(predictions, favoredJockeyTopN) {
		rate, ok := a.jockeys[h.JockeyName]
		if !ok || h.JockeyName == "" {
			continue
		}
		result.Jockeys = append(result.Jockeys, models.JockeyMatch{
			Jockey:       h.JockeyName,
			RecoveryRate: rate,
			HorseNo:      h.HorseNo,
		})
		result.Bonus = favoredJockeyBonus
	}
	result.HasHighRecoveryJockey = len(result.Jockeys) > 0
	return result
}

// RecommendedAction turns difficulty and the best single-horse EV into a verdict
func RecommendedAction(difficulty, maxEV float64) models.RecommendedAction {
	switch {
	case difficulty >= goForItDifficulty && maxEV >= goForItMaxEV:
		return models.ActionGoForIt
	case maxEV < skipMaxEV || difficulty < skipDifficulty:
		return models.ActionSkip
	default:
		return models.ActionNormal
	}
}

// ConfidenceLevelFor buckets a difficulty score
func ConfidenceLevelFor(difficulty float64) models.ConfidenceLevel {
	switch {
	case difficulty >= 0.6:
		return models.ConfidenceHigh
	case difficulty >= 0.4:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// Evaluate runs every analyzer signal over EV-annotated predictions
func (a *RaceAnalyzer) Evaluate(predictions []models.HorsePrediction, race models.RaceContext) models.ProEvaluation {
	difficulty := a.DifficultyScore(predictions)

	maxEV := 0.0
	for i, p := range predictions {
		if i == 0 || p.ExpectedValue > maxEV {
			maxEV = p.ExpectedValue
		}
	}

	return models.ProEvaluation{
		DifficultyScore:   models.RoundTo(difficulty, 3),
		RecommendedAction: RecommendedAction(difficulty, maxEV),
		DarkHorse:         a.DetectDarkHorse(predictions),
		SeasonBonus:       a.SeasonBonus(race),
		JockeyBonus:       a.JockeyBonus(predictions),
		ConfidenceLevel:   ConfidenceLevelFor(difficulty),
	}
}
