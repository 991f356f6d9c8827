package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yourusername/keiba-advisor/internal/models"
)

var (
	PurchasesRecordedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_recorded_total",
		Help:      "Total number of purchases recorded by bet type",
	}, []string{"bet_type"})

	PurchasesSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_settled_total",
		Help:      "Total number of purchases settled by outcome",
	}, []string{"outcome"})

	LedgerRecoveryRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ledger_recovery_rate_percent",
		Help:      "Recovery rate of settled purchases by bet type",
	}, []string{"bet_type"})

	LedgerHitRate = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ledger_hit_rate_percent",
		Help:      "Hit rate of settled purchases by bet type",
	}, []string{"bet_type"})
)

// RecordPurchase records a new ledger entry.
func RecordPurchase(betType models.BetType) {
	PurchasesRecordedTotal.WithLabelValues(string(betType)).Inc()
}

// RecordSettlement records a settled ledger entry.
func RecordSettlement(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	PurchasesSettledTotal.WithLabelValues(outcome).Inc()
}

// UpdateLedgerGauges publishes per-bet-type ledger statistics.
func UpdateLedgerGauges(byBetType []models.GroupStatistics) {
	for _, g := range byBetType {
		LedgerRecoveryRate.WithLabelValues(g.Key).Set(g.RecoveryRate)
		LedgerHitRate.WithLabelValues(g.Key).Set(g.HitRate)
	}
}
