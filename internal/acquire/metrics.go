package acquire

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/providers"
)

var (
	// providerFetches counts adapter calls by provider and outcome. The
	// outcome is "ok" or a providers.Reason, which keeps cardinality fixed.
	providerFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_provider_fetch_total",
			Help: "Provider calls made during acquisition, by outcome.",
		},
		[]string{"provider", "outcome"},
	)

	acquisitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracker_acquisition_duration_seconds",
			Help:    "Wall time of full acquisition passes.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(providerFetches, acquisitionDuration)
}

func recordFetch(p domain.Source, reason providers.Reason) {
	outcome := "ok"
	if reason != providers.ReasonNone {
		outcome = string(reason)
	}
	providerFetches.WithLabelValues(string(p), outcome).Inc()
}

func observeAcquisition(start, end time.Time, ok bool) {
	result := "ok"
	if !ok {
		result = "empty"
	}
	acquisitionDuration.WithLabelValues(result).Observe(end.Sub(start).Seconds())
}
