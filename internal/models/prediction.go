package models

// HorsePrediction represents the model's view of one starter in a race
type HorsePrediction struct {
	HorseNo        int     `json:"horse_no" validate:"required,gt=0"`
	HorseName      string  `json:"horse_name"`
	WinProbability float64 `json:"win_probability" validate:"gte=0,lte=1"`
	Odds           float64 `json:"odds" validate:"gt=0"`
	JockeyName     string  `json:"jockey_name,omitempty"`
	ExpectedValue  float64 `json:"expected_value"`
}

// ComputeExpectedValue returns win probability multiplied by decimal odds
func (h HorsePrediction) ComputeExpectedValue() float64 {
	return h.WinProbability * h.Odds
}

// WithExpectedValue returns a copy with ExpectedValue recomputed from its inputs
func (h HorsePrediction) WithExpectedValue() HorsePrediction {
	h.ExpectedValue = h.ComputeExpectedValue()
	return h
}
