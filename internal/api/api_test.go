package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-advisor/internal/health"
	"github.com/yourusername/keiba-advisor/internal/metrics"
	"github.com/yourusername/keiba-advisor/internal/models"
	"github.com/yourusername/keiba-advisor/internal/repository"
	"github.com/yourusername/keiba-advisor/internal/service"
	"github.com/yourusername/keiba-advisor/internal/strategy"
)

const decisiveBody = `{
	"race_info": {"race_id": "R2", "date": "2024-12-22", "venue": "Nakayama"},
	"bankroll": 10000,
	"predictions": [
		{"horse_no": 1, "horse_name": "Favorite", "win_probability": 0.6, "odds": 7.5},
		{"horse_no": 2, "win_probability": 0.1, "odds": 10},
		{"horse_no": 3, "win_probability": 0.05, "odds": 10},
		{"horse_no": 4, "win_probability": 0.05, "odds": 10},
		{"horse_no": 5, "win_probability": 0.05, "odds": 8}
	]
}`

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	log, _ := test.NewNullLogger()
	repos := repository.NewMemoryRepositories()
	engine := strategy.DefaultEngineConfig()

	recs := service.NewRecommendationService(
		strategy.NewRecommender(engine, strategy.NewRaceAnalyzer(), log),
		nil,
		repos.Recommendation,
		service.NewRecommendationCache(time.Minute, 100),
		models.DefaultStrategyConfig(100000),
		log,
	)
	ledger := service.NewPurchaseLedger(repos.Purchase, time.UTC, log)
	hc := health.NewHandler(health.Config{ServiceName: "keiba-advisor", Logger: log})
	hc.SetReady(true)

	return NewRouter(RouterConfig{
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
		MetricsPath:    "/metrics",
		Metrics:        metrics.Handler(),
	}, NewHandler(recs, ledger, engine, log), hc)
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAnalyzeRace(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/analyze_race", decisiveBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	issued := decode[models.IssuedRecommendation](t, rec)
	assert.Equal(t, models.RaceLevelDecisive, issued.RaceLevel)
	assert.Equal(t, models.BetTypeSingle, issued.BestBetType)
	assert.Equal(t, int64(200), issued.Recommendation.Recommendation.TotalCost)
	assert.Len(t, issued.BetTypes, len(models.BetTypes))

	again := decode[models.IssuedRecommendation](t, do(t, r, http.MethodPost, "/api/analyze_race", decisiveBody))
	assert.True(t, again.Cached)
	assert.Equal(t, issued.ID, again.ID)

	fetched := do(t, r, http.MethodGet, "/api/recommendations/"+issued.ID.String(), "")
	assert.Equal(t, http.StatusOK, fetched.Code)
}

func TestAnalyzeRaceErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"predictions": [`, http.StatusBadRequest},
		{"unknown field", `{"bankrol": 100}`, http.StatusBadRequest},
		{"empty request", `{}`, http.StatusBadRequest},
		{"bad odds", `{"predictions": [{"horse_no": 1, "win_probability": 0.5, "odds": 0}]}`, http.StatusBadRequest},
		{"race id without source", `{"race_id": "R1"}`, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, http.MethodPost, "/api/analyze_race", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestPurchaseLifecycle(t *testing.T) {
	r := newTestRouter(t)

	issued := decode[models.IssuedRecommendation](t, do(t, r, http.MethodPost, "/api/analyze_race", decisiveBody))

	rec := do(t, r, http.MethodPost, "/api/recommendations/"+issued.ID.String()+"/purchase", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	fromRec := decode[models.PurchaseRecord](t, rec)
	assert.Equal(t, []string{"1"}, fromRec.Combinations)
	assert.Equal(t, models.RaceLevelDecisive, fromRec.StrategyType)
	require.NotNil(t, fromRec.RecommendationID)
	assert.Equal(t, issued.ID, *fromRec.RecommendationID)

	rec = do(t, r, http.MethodPost, "/api/recommendations/"+issued.ID.String()+"/purchase", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)

	rec = do(t, r, http.MethodPost, "/api/purchase", `{
		"race_id": "R3", "bet_type": "馬連", "combinations": ["1-2", "1-3"],
		"strategy_type": "normal", "purchase_count": 2, "unit_price": 100,
		"total_cost": 200, "expected_value": 1.3, "expected_return": 260,
		"purchase_date": "2024-08-04"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	manual := decode[models.PurchaseRecord](t, rec)
	assert.Equal(t, models.BetTypeQuinella, manual.BetType)
	assert.Equal(t, models.SeasonSummer, manual.Season)

	rec = do(t, r, http.MethodPost, "/api/purchase/"+manual.ID.String()+"/settle", `{"actual_return": 1250}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settled := decode[models.PurchaseRecord](t, rec)
	assert.True(t, settled.IsHit)
	assert.Equal(t, 625.0, settled.RecoveryRate)

	rec = do(t, r, http.MethodPost, "/api/purchase/"+manual.ID.String()+"/settle", `{"actual_return": 0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/purchase_history?limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[service.PurchaseHistory](t, rec)
	assert.Len(t, history.Purchases, 2)
	assert.Equal(t, int64(400), history.Summary.TotalCost)
	assert.Equal(t, int64(1250), history.Summary.TotalReturn)
	assert.Equal(t, 312.5, history.Summary.RecoveryRate)
	assert.Equal(t, 1, history.Summary.HitCount)
	assert.Equal(t, 50.0, history.Summary.HitRate)

	rec = do(t, r, http.MethodGet, "/api/statistics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.PurchaseStatistics](t, rec)
	require.Len(t, stats.ByBetType, 2)
	assert.Equal(t, "quinella", stats.ByBetType[0].Key)
	assert.Equal(t, "single", stats.ByBetType[1].Key)
}

func TestPurchaseErrors(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"bad limit", http.MethodGet, "/api/purchase_history?limit=ten", "", http.StatusBadRequest},
		{"bad id", http.MethodPost, "/api/purchase/not-a-uuid/settle", `{"actual_return": 0}`, http.StatusBadRequest},
		{"unknown purchase", http.MethodPost, "/api/purchase/6f1c8a4e-0000-4000-8000-000000000000/settle", `{"actual_return": 0}`, http.StatusNotFound},
		{"unknown recommendation", http.MethodGet, "/api/recommendations/6f1c8a4e-0000-4000-8000-000000000000", "", http.StatusNotFound},
		{"missing bet type", http.MethodPost, "/api/purchase", `{"race_id": "R1", "combinations": ["1"], "purchase_count": 1, "unit_price": 100}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestKelly(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/kelly", `{"probability": 0.5, "odds": 3.0, "bankroll": 10000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decode[strategy.KellyQuote](t, rec)
	assert.Equal(t, 0.25, quote.RawFraction)
	assert.Equal(t, 0.05, quote.Fraction)
	assert.Equal(t, int64(500), quote.Stake)

	rec = do(t, r, http.MethodPost, "/api/kelly", `{"probability": 0.5, "odds": 3.0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5000), decode[strategy.KellyQuote](t, rec).Stake)

	rec = do(t, r, http.MethodPost, "/api/kelly", `{"probability": 2, "odds": 3.0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndMetricsMounted(t *testing.T) {
	r := newTestRouter(t)
	metrics.InitRegistry()

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ready", "").Code)

	do(t, r, http.MethodPost, "/api/analyze_race", decisiveBody)
	rec := do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "keiba_advisor_recommendations_total"))
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze_race", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
