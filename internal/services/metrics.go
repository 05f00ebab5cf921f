package services

import "github.com/prometheus/client_golang/prometheus"

var (
	requestsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_requests_sent_total",
		Help: "Match requests created.",
	})

	requestsResponded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_requests_responded_total",
		Help: "Responses to match requests by resulting status.",
	}, []string{"status"})

	matchesResolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matches_resolved_total",
		Help: "Match resolutions by result (created or existing).",
	}, []string{"result"})

	assistantCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_calls_total",
		Help: "Assistant calls by kind (text, image, speech) and outcome (ok, mock, fallback).",
	}, []string{"kind", "outcome"})

	subscriptionsActivated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscriptions_activated_total",
		Help: "Subscriptions recorded.",
	})
)

func init() {
	prometheus.MustRegister(requestsSent, requestsResponded, matchesResolved, assistantCalls, subscriptionsActivated)
}
