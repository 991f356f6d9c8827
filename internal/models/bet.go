package models

import (
	"strconv"
	"strings"
)

// BetType identifies a wagering pool
type BetType string

const (
	BetTypeSingle        BetType = "single"
	BetTypeQuinella      BetType = "quinella"
	BetTypeWide          BetType = "wide"
	BetTypeTrifectaBox   BetType = "trifecta_box"
	BetTypeExacta        BetType = "exacta"
	BetTypeTrifectaExact BetType = "trifecta_exact"
)

// BetTypes lists every supported bet type in evaluation order.
// Best-bet selection breaks ties in favor of the earlier entry.
var BetTypes = []BetType{
	BetTypeSingle,
	BetTypeQuinella,
	BetTypeWide,
	BetTypeTrifectaBox,
	BetTypeExacta,
	BetTypeTrifectaExact,
}

var betTypeLabels = map[BetType]string{
	BetTypeSingle:        "単勝",
	BetTypeQuinella:      "馬連",
	BetTypeWide:          "ワイド",
	BetTypeTrifectaBox:   "三連複",
	BetTypeExacta:        "馬単",
	BetTypeTrifectaExact: "三連単",
}

// Label returns the display name printed on betting tickets
func (b BetType) Label() string {
	if label, ok := betTypeLabels[b]; ok {
		return label
	}
	return string(b)
}

// Ordered reports whether the finishing order of a combination matters
func (b BetType) Ordered() bool {
	return b == BetTypeExacta || b == BetTypeTrifectaExact
}

// IsValid checks if the bet type is one of the supported pools
func (b BetType) IsValid() bool {
	_, ok := betTypeLabels[b]
	return ok
}

// ParseBetType accepts either the code or the ticket label of a bet type
func ParseBetType(s string) (BetType, bool) {
	for _, bt := range BetTypes {
		if s == string(bt) || s == bt.Label() {
			return bt, true
		}
	}
	return "", false
}

// BetCandidate represents one purchasable combination within a bet type
type BetCandidate struct {
	BetType       BetType  `json:"bet_type"`
	Horses        []int    `json:"horses"`
	Combination   string   `json:"combination"`
	ExpectedValue float64  `json:"expected_value"`
	Probability   float64  `json:"probability"`
	Odds          *float64 `json:"odds,omitempty"`
}

// NewBetCandidate builds a candidate and renders its combination string.
// Ordered bet types join horse numbers with an arrow, unordered ones with a dash.
func NewBetCandidate(betType BetType, horses []int, ev, probability float64) BetCandidate {
	sep := "-"
	if betType.Ordered() {
		sep = "→"
	}
	parts := make([]string, len(horses))
	for i, h := range horses {
		parts[i] = strconv.Itoa(h)
	}
	return BetCandidate{
		BetType:       betType,
		Horses:        horses,
		Combination:   strings.Join(parts, sep),
		ExpectedValue: ev,
		Probability:   probability,
	}
}
