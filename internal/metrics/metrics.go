package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ViewSettleDuration tracks the latency of view settlement requests.
	ViewSettleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adbarter_view_settle_duration_seconds",
			Help:    "Duration of ad view settlement requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
		},
		[]string{"status"}, // success, ineligible, exhausted, conflict, error
	)

	// CreditsPaidTotal counts credits paid out to viewers.
	CreditsPaidTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adbarter_credits_paid_total",
		Help: "Total credits paid out to viewers for rewarded ad views",
	})

	// CampaignsCreatedTotal counts successfully created campaigns.
	CampaignsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "adbarter_campaigns_created_total",
		Help: "Total campaigns created",
	})

	// CampaignDecisionsTotal counts admin approve/reject decisions and
	// owner cancellations.
	CampaignDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "adbarter_campaign_decisions_total",
		Help: "Total campaign lifecycle decisions",
	}, []string{"decision"}) // approved, rejected, cancelled
)

// RecordViewSettle records the outcome and duration of one settlement.
func RecordViewSettle(status string, seconds float64) {
	ViewSettleDuration.WithLabelValues(status).Observe(seconds)
}
