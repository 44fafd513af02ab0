package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Auth metrics

	SignupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chirp",
		Name:      "signups_total",
		Help:      "Total accounts created.",
	})

	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chirp",
		Name:      "logins_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	OTPIssuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chirp",
		Name:      "otp_issued_total",
		Help:      "Total one-time codes issued.",
	})

	OTPVerifiedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chirp",
		Name:      "otp_verified_total",
		Help:      "Total OTP verification attempts, by result.",
	}, []string{"result"})

	EmailsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chirp",
		Name:      "emails_sent_total",
		Help:      "Total emails sent, by kind and outcome.",
	}, []string{"kind", "outcome"})

	// Janitor metrics

	JanitorPurgedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chirp",
		Name:      "janitor_purged_total",
		Help:      "Total expired credential records purged, by table.",
	}, []string{"table"})

	JanitorSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "chirp",
		Name:      "janitor_sweep_duration_seconds",
		Help:      "Time taken for one janitor sweep.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "chirp",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "chirp",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		SignupsTotal,
		LoginsTotal,
		OTPIssuedTotal,
		OTPVerifiedTotal,
		EmailsSentTotal,
		JanitorPurgedTotal,
		JanitorSweepDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}
