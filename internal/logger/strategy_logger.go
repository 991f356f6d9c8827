package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// StrategyLogger records recommendation decisions
type StrategyLogger struct {
	*logrus.Entry
}

// NewStrategyLogger creates a new strategy logger.
func NewStrategyLogger(baseLogger *logrus.Logger) *StrategyLogger {
	return &StrategyLogger{
		Entry: baseLogger.WithField("component", "strategy"),
	}
}

// LogRecommendation logs the outcome of one recommendation call
func (sl *StrategyLogger) LogRecommendation(rec *models.Recommendation, riskMode models.RiskMode, durationMs float64, cached bool) {
	fields := logrus.Fields{
		"race_id":            rec.RaceInfo.RaceID,
		"race_level":         rec.RaceLevel,
		"best_bet_type":      rec.BestBetType,
		"max_ev":             rec.BestBetInfo.MaxExpectedValue,
		"difficulty_score":   rec.ProEvaluation.DifficultyScore,
		"recommended_action": rec.ProEvaluation.RecommendedAction,
		"risk_mode":          riskMode,
		"purchase_count":     rec.Recommendation.PurchaseCount,
		"unit_price":         rec.Recommendation.UnitPrice,
		"total_cost":         rec.Recommendation.TotalCost,
		"duration_ms":        durationMs,
		"cached":             cached,
	}
	if rec.ProEvaluation.DarkHorse != nil {
		fields["dark_horse"] = rec.ProEvaluation.DarkHorse.HorseNo
	}
	if rec.IsSkip() {
		sl.WithFields(fields).Info("Race skipped")
		return
	}
	sl.WithFields(fields).Info("Recommendation issued")
}

// LogDecisiveRace flags a race the engine wants to bet heavily
func (sl *StrategyLogger) LogDecisiveRace(raceID string, betType models.BetType, budget int64, kellyAmount *int64) {
	fields := logrus.Fields{
		"race_id":  raceID,
		"bet_type": betType,
		"budget":   budget,
	}
	if kellyAmount != nil {
		fields["kelly_amount"] = *kellyAmount
	}
	sl.WithFields(fields).Warn("Decisive race detected")
}

// LogPredictionFetch logs a lookup against the prediction source
func (sl *StrategyLogger) LogPredictionFetch(raceID string, horses int, durationMs float64, err error) {
	entry := sl.WithFields(logrus.Fields{
		"race_id":     raceID,
		"horses":      horses,
		"duration_ms": durationMs,
	})
	if err != nil {
		entry.WithError(err).Error("Prediction fetch failed")
		return
	}
	entry.Debug("Predictions fetched")
}
