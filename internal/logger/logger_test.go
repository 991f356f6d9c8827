package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keiba-advisor/internal/models"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
		return nil
	}
	return logEntry
}

func TestNewLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLoggerWithOutput("debug", "production", buf)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	dev := NewLoggerWithOutput("nonsense", "development", buf)
	assert.Equal(t, logrus.InfoLevel, dev.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)
}

func sampleRecommendation(level models.RaceLevel) *models.Recommendation {
	return &models.Recommendation{
		RaceInfo:    models.RaceContext{RaceID: "202406050811"},
		BestBetType: models.BetTypeQuinella,
		BestBetInfo: models.BestBetInfo{MaxExpectedValue: 2.4},
		RaceLevel:   level,
		ProEvaluation: models.ProEvaluation{
			DifficultyScore:   0.52,
			RecommendedAction: models.ActionNormal,
			DarkHorse:         &models.DarkHorse{HorseNo: 9},
		},
		Recommendation: models.StakePlan{PurchaseCount: 7, UnitPrice: 200, TotalCost: 1400},
	}
}

func TestStrategyLoggerRecommendation(t *testing.T) {
	log, buf := setupTestLogger()
	NewStrategyLogger(log).LogRecommendation(sampleRecommendation(models.RaceLevelNormal), models.RiskModeBalanced, 1.5, false)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "strategy", entry["component"])
	assert.Equal(t, "Recommendation issued", entry["msg"])
	assert.Equal(t, "202406050811", entry["race_id"])
	assert.Equal(t, "quinella", entry["best_bet_type"])
	assert.Equal(t, float64(9), entry["dark_horse"])
	assert.Equal(t, float64(1400), entry["total_cost"])
}

func TestStrategyLoggerSkip(t *testing.T) {
	log, buf := setupTestLogger()
	NewStrategyLogger(log).LogRecommendation(sampleRecommendation(models.RaceLevelSkip), models.RiskModeConservative, 0.4, true)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "Race skipped", entry["msg"])
	assert.Equal(t, true, entry["cached"])
}

func TestStrategyLoggerDecisiveRace(t *testing.T) {
	log, buf := setupTestLogger()
	kelly := int64(500)
	NewStrategyLogger(log).LogDecisiveRace("R1", models.BetTypeSingle, 280, &kelly)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, float64(500), entry["kelly_amount"])
}

func TestStrategyLoggerPredictionFetchFailure(t *testing.T) {
	log, buf := setupTestLogger()
	NewStrategyLogger(log).LogPredictionFetch("R1", 0, 12.5, errors.New("upstream 503"))

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "upstream 503", entry["error"])
}

func TestAuditLoggerPurchase(t *testing.T) {
	log, buf := setupTestLogger()
	audit := NewAuditLogger(log)

	p := &models.PurchaseRecord{
		ID:            uuid.New(),
		RaceID:        "R1",
		PurchaseDate:  time.Date(2024, 5, 26, 0, 0, 0, 0, time.UTC),
		BetType:       models.BetTypeWide,
		StrategyType:  models.RaceLevelNormal,
		PurchaseCount: 5,
		UnitPrice:     200,
		TotalCost:     1000,
	}
	audit.LogPurchaseRecorded(p)

	entry := parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "audit", entry["component"])
	assert.Equal(t, p.ID.String(), entry["purchase_id"])
	assert.Equal(t, "2024-05-26", entry["purchase_date"])

	buf.Reset()
	p.Settle(2500, time.Now())
	audit.LogPurchaseSettled(p)

	entry = parseLogOutput(buf)
	require.NotNil(t, entry)
	assert.Equal(t, "Purchase settled", entry["msg"])
	assert.Equal(t, 250.0, entry["recovery_rate"])
	assert.Equal(t, true, entry["is_hit"])
}
