package services

import "github.com/prometheus/client_golang/prometheus"

var (
	ConnectionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_connections_total",
			Help: "Total number of successful social account connections",
		},
		[]string{"platform"},
	)
	CallbackFailuresCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_callback_failures_total",
			Help: "Total number of failed OAuth callbacks",
		},
		[]string{"platform"},
	)
	TokenRefreshCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "social_token_refreshes_total",
			Help: "Total number of explicit token refreshes",
		},
		[]string{"platform"},
	)
	AnalysesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "post_analyses_total",
			Help: "Total number of stored post analyses",
		},
	)
)
