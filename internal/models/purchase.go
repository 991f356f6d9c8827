package models

import (
	"time"

	"github.com/google/uuid"
)

// Season names a racing season by calendar month
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// SeasonOf maps a month to its racing season
func SeasonOf(month time.Month) Season {
	switch {
	case month >= time.March && month <= time.May:
		return SeasonSpring
	case month >= time.June && month <= time.August:
		return SeasonSummer
	case month >= time.September && month <= time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// PurchaseRecord represents a ticket purchase made from a recommendation
type PurchaseRecord struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	// RecommendationID links a purchase made from an issued recommendation
	RecommendationID *uuid.UUID `db:"recommendation_id" json:"recommendation_id,omitempty"`
	RaceID           string     `db:"race_id" json:"race_id" validate:"required"`
	PurchaseDate     time.Time  `db:"purchase_date" json:"purchase_date"`
	Season           Season     `db:"season" json:"season"`
	Venue            string     `db:"venue" json:"venue,omitempty"`
	BetType          BetType    `db:"bet_type" json:"bet_type" validate:"required"`
	Combinations     []string   `db:"combinations" json:"combinations" validate:"required,min=1"`
	StrategyType     RaceLevel  `db:"strategy_type" json:"strategy_type"`
	PurchaseCount    int64      `db:"purchase_count" json:"purchase_count" validate:"gt=0"`
	UnitPrice        int64      `db:"unit_price" json:"unit_price" validate:"gt=0"`
	TotalCost        int64      `db:"total_cost" json:"total_cost" validate:"gt=0"`
	ExpectedValue    float64    `db:"expected_value" json:"expected_value"`
	ExpectedReturn   float64    `db:"expected_return" json:"expected_return"`
	ActualReturn     int64      `db:"actual_return" json:"actual_return"`
	IsHit            bool       `db:"is_hit" json:"is_hit"`
	RecoveryRate     float64    `db:"recovery_rate" json:"recovery_rate"`
	SettledAt        *time.Time `db:"settled_at" json:"settled_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

// IsSettled checks if the race result has been applied
func (p *PurchaseRecord) IsSettled() bool {
	return p.SettledAt != nil
}

// Settle applies the payout of a finished race
func (p *PurchaseRecord) Settle(actualReturn int64, at time.Time) {
	p.ActualReturn = actualReturn
	p.IsHit = actualReturn > 0
	p.RecoveryRate = 0
	if p.TotalCost > 0 {
		p.RecoveryRate = RoundTo(float64(actualReturn)/float64(p.TotalCost)*100, 1)
	}
	p.SettledAt = &at
}

// PurchaseSummary aggregates a slice of purchase history
type PurchaseSummary struct {
	TotalCost    int64   `json:"total_cost"`
	TotalReturn  int64   `json:"total_return"`
	RecoveryRate float64 `json:"recovery_rate"`
	HitCount     int     `json:"hit_count"`
	HitRate      float64 `json:"hit_rate"`
}

// GroupStatistics aggregates purchases sharing a bet type or season
type GroupStatistics struct {
	Key          string  `json:"key"`
	Count        int     `json:"count"`
	TotalCost    int64   `json:"total_cost"`
	TotalReturn  int64   `json:"total_return"`
	RecoveryRate float64 `json:"recovery_rate"`
	HitCount     int     `json:"hit_count"`
	HitRate      float64 `json:"hit_rate"`
}

// PurchaseStatistics is the ledger breakdown by bet type and by season
type PurchaseStatistics struct {
	ByBetType []GroupStatistics `json:"by_bet_type"`
	BySeason  []GroupStatistics `json:"by_season"`
}

// NewGroupStatistics builds a group row, rounding rates to one decimal place
func NewGroupStatistics(key string, count int, totalCost, totalReturn int64, hitCount int) GroupStatistics {
	g := GroupStatistics{
		Key:         key,
		Count:       count,
		TotalCost:   totalCost,
		TotalReturn: totalReturn,
		HitCount:    hitCount,
	}
	if totalCost > 0 {
		g.RecoveryRate = RoundTo(float64(totalReturn)/float64(totalCost)*100, 1)
	}
	if count > 0 {
		g.HitRate = RoundTo(float64(hitCount)/float64(count)*100, 1)
	}
	return g
}

// Summarize totals a page of purchase history
func Summarize(records []*PurchaseRecord) PurchaseSummary {
	var cost, ret int64
	hits := 0
	for _, r := range records {
		cost += r.TotalCost
		ret += r.ActualReturn
		if r.IsHit {
			hits++
		}
	}
	g := NewGroupStatistics("", len(records), cost, ret, hits)
	return PurchaseSummary{
		TotalCost:    g.TotalCost,
		TotalReturn:  g.TotalReturn,
		RecoveryRate: g.RecoveryRate,
		HitCount:     g.HitCount,
		HitRate:      g.HitRate,
	}
}
