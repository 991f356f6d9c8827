package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yourusername/keiba-advisor/internal/models"
)

var (
	RecommendationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total number of recommendations by race level and best bet type",
	}, []string{"race_level", "bet_type"})

	RecommendationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "recommendation_duration_seconds",
		Help:      "Duration of recommendation computation in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	AllocatedBudget = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "allocated_budget_yen",
		Help:      "Total ticket cost recommended per race",
		Buckets:   []float64{0, 100, 300, 500, 1000, 3000, 5000, 10000, 30000},
	}, []string{"race_level"})

	DifficultyScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "difficulty_score",
		Help:      "Distribution of race difficulty scores",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	})
)

// RecordRecommendation records one computed recommendation.
func RecordRecommendation(rec *models.Recommendation, durationSeconds float64) {
	RecommendationsTotal.WithLabelValues(string(rec.RaceLevel), string(rec.BestBetType)).Inc()
	RecommendationDuration.Observe(durationSeconds)
	AllocatedBudget.WithLabelValues(string(rec.RaceLevel)).Observe(float64(rec.Recommendation.TotalCost))
	DifficultyScore.Observe(rec.ProEvaluation.DifficultyScore)
}
