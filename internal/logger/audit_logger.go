package logger

import (
	"github.com/sirupsen/logrus"
	"github.com/yourusername/keiba-advisor/internal/models"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogPurchaseRecorded logs a new ledger entry
func (al *AuditLogger) LogPurchaseRecorded(p *models.PurchaseRecord) {
	al.WithFields(logrus.Fields{
		"purchase_id":    p.ID.String(),
		"race_id":        p.RaceID,
		"bet_type":       p.BetType,
		"strategy_type":  p.StrategyType,
		"purchase_count": p.PurchaseCount,
		"unit_price":     p.UnitPrice,
		"total_cost":     p.TotalCost,
		"purchase_date":  p.PurchaseDate.Format(models.RaceDateLayout),
	}).Info("Purchase recorded")
}

// LogPurchaseSettled logs the result of a settled ticket
func (al *AuditLogger) LogPurchaseSettled(p *models.PurchaseRecord) {
	al.WithFields(logrus.Fields{
		"purchase_id":   p.ID.String(),
		"race_id":       p.RaceID,
		"total_cost":    p.TotalCost,
		"actual_return": p.ActualReturn,
		"recovery_rate": p.RecoveryRate,
		"is_hit":        p.IsHit,
	}).Info("Purchase settled")
}

// LogRecommendationPersisted logs a recommendation written to storage
func (al *AuditLogger) LogRecommendationPersisted(id string, raceID string, level models.RaceLevel) {
	al.WithFields(logrus.Fields{
		"recommendation_id": id,
		"race_id":           raceID,
		"race_level":        level,
	}).Debug("Recommendation persisted")
}
