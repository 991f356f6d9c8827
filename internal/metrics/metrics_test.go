package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/keiba-advisor/internal/models"
)

func TestMetricsRegistry(t *testing.T) {
	first := InitRegistry()
	assert.NotNil(t, first)
	assert.Same(t, first, GetRegistry())
}

func TestRecordRecommendation(t *testing.T) {
	InitRegistry()
	counter := RecommendationsTotal.WithLabelValues("decisive", "single")
	before := testutil.ToFloat64(counter)

	RecordRecommendation(&models.Recommendation{
		RaceLevel:      models.RaceLevelDecisive,
		BestBetType:    models.BetTypeSingle,
		ProEvaluation:  models.ProEvaluation{DifficultyScore: 0.9},
		Recommendation: models.StakePlan{TotalCost: 200},
	}, 0.0002)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestCacheCounters(t *testing.T) {
	InitRegistry()
	hits := testutil.ToFloat64(CacheHitsTotal)
	misses := testutil.ToFloat64(CacheMissesTotal)

	RecordCacheHit()
	RecordCacheMiss()
	RecordCacheMiss()

	assert.Equal(t, hits+1, testutil.ToFloat64(CacheHitsTotal))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheMissesTotal))
}

func TestRecordPredictionFetch(t *testing.T) {
	InitRegistry()
	failures := testutil.ToFloat64(PredictionFetchesTotal.WithLabelValues("error"))

	RecordPredictionFetch(0.05, errors.New("timeout"))
	RecordPredictionFetch(0.01, nil)

	assert.Equal(t, failures+1, testutil.ToFloat64(PredictionFetchesTotal.WithLabelValues("error")))
}

func TestLedgerMetrics(t *testing.T) {
	InitRegistry()

	RecordPurchase(models.BetTypeWide)
	RecordSettlement(true)
	UpdateLedgerGauges([]models.GroupStatistics{
		{Key: "wide", RecoveryRate: 84.5, HitRate: 30},
		{Key: "single", RecoveryRate: 112.0, HitRate: 25},
	})

	assert.Equal(t, 84.5, testutil.ToFloat64(LedgerRecoveryRate.WithLabelValues("wide")))
	assert.Equal(t, 25.0, testutil.ToFloat64(LedgerHitRate.WithLabelValues("single")))
}

func TestHandlerServesNamespace(t *testing.T) {
	InitRegistry()
	RecordCacheHit()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "keiba_advisor_recommendation_cache_hits_total")
}
