package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts every request entering the router.
	RequestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satukas_api_requests_total",
		Help: "The total number of requests",
	})

	// ResponsesTotal counts responses by status code.
	ResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satukas_api_responses_total",
		Help: "The total number of responses by status code",
	}, []string{"status"})

	// RequestDuration observes end-to-end handler latency.
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "satukas_api_request_duration_seconds",
		Help:    "The request duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// LoginAttemptsTotal counts login outcomes.
	LoginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satukas_api_login_attempts_total",
		Help: "The total number of login attempts",
	}, []string{"status"})

	// RegistrationAttemptsTotal counts registration outcomes.
	RegistrationAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satukas_api_registration_attempts_total",
		Help: "The total number of registration attempts",
	}, []string{"status"})

	// TokenRefreshTotal counts refresh-token exchange outcomes.
	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satukas_api_token_refresh_total",
		Help: "The total number of token refreshes",
	}, []string{"status"})

	// EmailsSentTotal counts outbound emails by kind and outcome.
	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satukas_api_emails_sent_total",
		Help: "The total number of outbound emails",
	}, []string{"kind", "status"})

	// RateLimitExceededTotal counts requests refused by the rate limiter.
	RateLimitExceededTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "satukas_api_rate_limit_exceeded_total",
		Help: "The total number of requests rejected by the rate limiter",
	}, []string{"scope"})

	// BlacklistedTokenRejections counts requests refused because the access
	// token was revoked before its natural expiry.
	BlacklistedTokenRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "satukas_api_blacklisted_token_rejections_total",
		Help: "The total number of requests rejected due to a blacklisted access token",
	})
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
