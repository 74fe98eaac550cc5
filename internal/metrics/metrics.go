// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relais_operation_duration_seconds",
			Help:    "Duration of service operations",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"operation", "result"},
	)

	transactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_transactions_total",
			Help: "Transactions by lifecycle status and operation category",
		},
		[]string{"status", "category"},
	)

	transactionVolume = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_transaction_volume_total",
			Help: "Executed transaction amounts and fees, in currency units",
		},
		[]string{"kind"},
	)

	rechargesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_recharges_total",
			Help: "Recharge requests by status and payment method",
		},
		[]string{"status", "method"},
	)

	balanceChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_balance_changes_total",
			Help: "Balance movements by owner kind, balance kind and direction",
		},
		[]string{"owner", "balance", "direction"},
	)

	cardEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_prepaid_card_events_total",
			Help: "Prepaid card inventory events",
		},
		[]string{"event"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	eventPublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_event_publish_errors_total",
			Help: "Change events that could not be published",
		},
		[]string{"sink"},
	)

	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relais_cache_lookups_total",
			Help: "Redis cache lookups by result",
		},
		[]string{"result"},
	)

	realtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relais_realtime_clients",
			Help: "Connected websocket clients",
		},
	)
)

// ObserveOperation records how long op took since start.
func ObserveOperation(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

func RecordTransaction(status, category string, amount, fee float64) {
	transactionsTotal.WithLabelValues(status, category).Inc()
	if amount > 0 {
		transactionVolume.WithLabelValues("amount").Add(amount)
	}
	if fee > 0 {
		transactionVolume.WithLabelValues("fee").Add(fee)
	}
}

func RecordRecharge(status, method string) {
	rechargesTotal.WithLabelValues(status, method).Inc()
}

func RecordBalanceChange(owner, balance string, delta float64) {
	direction := "credit"
	if delta < 0 {
		direction = "debit"
	}
	balanceChanges.WithLabelValues(owner, balance, direction).Inc()
}

func RecordCardEvent(event string, n int) {
	cardEvents.WithLabelValues(event).Add(float64(n))
}

func RecordLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func RecordPublishError(sink string) {
	eventPublishErrors.WithLabelValues(sink).Inc()
}

func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func SetRealtimeClients(n int) {
	realtimeClients.Set(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
