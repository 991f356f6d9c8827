package models

// RiskMode selects how much of the bankroll a single race may consume
type RiskMode string

const (
	RiskModeConservative RiskMode = "conservative"
	RiskModeBalanced     RiskMode = "balanced"
	RiskModeAggressive   RiskMode = "aggressive"
)

// DefaultMinExpectedValue is the EV floor below which a race is skipped
const DefaultMinExpectedValue = 1.2

// IsValid checks if the risk mode is a known profile
func (r RiskMode) IsValid() bool {
	switch r {
	case RiskModeConservative, RiskModeBalanced, RiskModeAggressive:
		return true
	default:
		return false
	}
}

// StrategyConfig holds the caller's staking preferences for one race
type StrategyConfig struct {
	Bankroll         float64  `json:"bankroll" validate:"gt=0"`
	RiskMode         RiskMode `json:"risk_mode"`
	UseKelly         bool     `json:"use_kelly"`
	DynamicUnit      bool     `json:"dynamic_unit"`
	MinExpectedValue float64  `json:"min_expected_value" validate:"gte=0"`
}

// DefaultStrategyConfig returns the balanced profile with Kelly and dynamic pricing enabled
func DefaultStrategyConfig(bankroll float64) StrategyConfig {
	return StrategyConfig{
		Bankroll:         bankroll,
		RiskMode:         RiskModeBalanced,
		UseKelly:         true,
		DynamicUnit:      true,
		MinExpectedValue: DefaultMinExpectedValue,
	}
}
