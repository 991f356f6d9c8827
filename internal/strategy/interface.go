package strategy

import (
	"github.com/yourusername/keiba-advisor/internal/models"
)

// Engine turns one race's predictions into a wagering recommendation
type Engine interface {
	Recommend(predictions []models.HorsePrediction, race models.RaceContext, cfg models.StrategyConfig) (*models.Recommendation, error)
}

// EngineConfig groups the tunables of the recommendation pipeline
type EngineConfig struct {
	Generator     GeneratorConfig
	RiskFractions RiskFractions
	KellyFraction float64
	KellyCap      float64
}

// DefaultEngineConfig returns the stock tables and limits
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Generator:     DefaultGeneratorConfig(),
		RiskFractions: DefaultRiskFractions(),
		KellyFraction: DefaultKellyFraction,
		KellyCap:      DefaultKellyCap,
	}
}
