package strategy

import (
	"fmt"
	"math"

	"github.com/yourusername/keiba-advisor/internal/models"
)

// ValidateOdds ensures decimal odds are usable for EV computation
func ValidateOdds(odds float64) error {
	if math.IsNaN(odds) || math.IsInf(odds, 0) {
		return fmt.Errorf("%w: odds must be finite", models.ErrInvalidInput)
	}
	if odds <= 0 {
		return fmt.Errorf("%w: odds must be positive, got %v", models.ErrInvalidInput, odds)
	}
	return nil
}

// ValidateProbability ensures a win probability lies in [0,1]
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("%w: win_probability must be in [0,1], got %v", models.ErrInvalidInput, p)
	}
	return nil
}

// KellyFraction returns the raw Kelly fraction f* = (p*o - 1) / (o - 1), floored at zero
func KellyFraction(probability float64, odds float64) float64 {
	if probability <= 0 || odds <= 1 {
		return 0
	}
	kelly := (probability*odds - 1) / (odds - 1)
	if kelly <= 0 {
		return 0
	}
	return kelly
}

// FractionalKelly scales the raw Kelly fraction and applies a hard cap
func FractionalKelly(probability, odds, fraction, maxFraction float64) float64 {
	adjusted := KellyFraction(probability, odds) * fraction
	if maxFraction > 0 && adjusted > maxFraction {
		return maxFraction
	}
	return adjusted
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
