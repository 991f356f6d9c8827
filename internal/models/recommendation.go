package models

import (
	"time"

	"github.com/google/uuid"
)

// RaceLevel is the race-level classification driving capital commitment
type RaceLevel string

const (
	RaceLevelSkip     RaceLevel = "skip"
	RaceLevelNormal   RaceLevel = "normal"
	RaceLevelDecisive RaceLevel = "decisive"
)

// RecommendedAction is the analyzer's verdict on a race
type RecommendedAction string

const (
	ActionGoForIt RecommendedAction = "勝負"
	ActionSkip    RecommendedAction = "見送り"
	ActionNormal  RecommendedAction = "通常"
)

// ConfidenceLevel buckets the difficulty score for display
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// DarkHorse is a mid-priced starter whose EV stands out from the market
type DarkHorse struct {
	HorseNo       int     `json:"horse_no"`
	HorseName     string  `json:"horse_name"`
	Odds          float64 `json:"odds"`
	ExpectedValue float64 `json:"expected_value"`
	Popularity    int     `json:"popularity"`
}

// JockeyMatch records a favored jockey riding one of the top horses
type JockeyMatch struct {
	Jockey       string  `json:"jockey"`
	RecoveryRate float64 `json:"recovery_rate"`
	HorseNo      int     `json:"horse_no"`
}

// JockeyBonus is the favored-jockey modifier with the jockeys that triggered it
type JockeyBonus struct {
	HasHighRecoveryJockey bool          `json:"has_high_recovery_jockey"`
	Jockeys               []JockeyMatch `json:"jockeys"`
	Bonus                 float64       `json:"bonus"`
}

// ProEvaluation bundles the race analyzer's signals
type ProEvaluation struct {
	DifficultyScore   float64           `json:"difficulty_score"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	DarkHorse         *DarkHorse        `json:"dark_horse"`
	SeasonBonus       float64           `json:"season_bonus"`
	JockeyBonus       JockeyBonus       `json:"jockey_bonus"`
	ConfidenceLevel   ConfidenceLevel   `json:"confidence_level"`
}

// BestBetInfo summarizes the candidate list of the selected bet type
type BestBetInfo struct {
	AverageExpectedValue float64 `json:"average_expected_value"`
	MaxExpectedValue     float64 `json:"max_expected_value"`
	CandidateCount       int     `json:"candidate_count"`
	MaxProbability       float64 `json:"max_probability"`
}

// StakePlan is the concrete purchase plan for one race
type StakePlan struct {
	UnitPrice              int64   `json:"unit_price"`
	PurchaseCount          int64   `json:"purchase_count"`
	TotalCost              int64   `json:"total_cost"`
	Budget                 int64   `json:"budget"`
	PerRaceLimit           int64   `json:"per_race_limit"`
	BudgetUsageRate        float64 `json:"budget_usage_rate"`
	KellyRecommendedAmount *int64  `json:"kelly_recommended_amount,omitempty"`
	StrategyExplanation    string  `json:"strategy_explanation"`
}

// Recommendation is the engine output for one (predictions, race, strategy) triple
type Recommendation struct {
	RaceInfo       RaceContext                `json:"race_info"`
	ProEvaluation  ProEvaluation              `json:"pro_evaluation"`
	Predictions    []HorsePrediction          `json:"predictions"`
	BetTypes       map[BetType][]BetCandidate `json:"bet_types"`
	BestBetType    BetType                    `json:"best_bet_type"`
	BestBetInfo    BestBetInfo                `json:"best_bet_info"`
	RaceLevel      RaceLevel                  `json:"race_level"`
	Recommendation StakePlan                  `json:"recommendation"`
}

// BestCandidates returns the candidate list of the selected bet type
func (r *Recommendation) BestCandidates() []BetCandidate {
	return r.BetTypes[r.BestBetType]
}

// IsSkip checks if the race should not be bet
func (r *Recommendation) IsSkip() bool {
	return r.RaceLevel == RaceLevelSkip
}

// IssuedRecommendation is a recommendation as handed to a caller, with identity
type IssuedRecommendation struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Cached    bool      `json:"cached"`
	*Recommendation
}
