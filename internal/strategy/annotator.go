package strategy

import (
	"fmt"

	"github.com/yourusername/keiba-advisor/internal/models"
)

// AnnotateExpectedValue validates predictions and returns copies with
// expected_value = win_probability * odds. The input slice is not modified.
func AnnotateExpectedValue(predictions []models.HorsePrediction) ([]models.HorsePrediction, error) {
	if len(predictions) == 0 {
		return nil, fmt.Errorf("%w: predictions must not be empty", models.ErrInvalidInput)
	}

	seen := make(map[int]struct{}, len(predictions))
	annotated := make([]models.HorsePrediction, 0, len(predictions))
	for _, p := range predictions {
		if p.HorseNo <= 0 {
			return nil, fmt.Errorf("%w: horse_no must be positive, got %d", models.ErrInvalidInput, p.HorseNo)
		}
		if _, dup := seen[p.HorseNo]; dup {
			return nil, fmt.Errorf("%w: duplicate horse_no %d", models.ErrInvalidInput, p.HorseNo)
		}
		seen[p.HorseNo] = struct{}{}

		if err := ValidateProbability(p.WinProbability); err != nil {
			return nil, fmt.Errorf("horse %d: %w", p.HorseNo, err)
		}
		if err := ValidateOdds(p.Odds); err != nil {
			return nil, fmt.Errorf("horse %d: %w", p.HorseNo, err)
		}
		annotated = append(annotated, p.WithExpectedValue())
	}
	return annotated, nil
}
