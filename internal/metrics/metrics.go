// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderAttempts counts signing attempts per provider family and result
	// (signed, submitted, cancelled, unavailable, failed).
	ProviderAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploy_provider_attempts_total",
		Help: "Signing attempts per provider family and result.",
	}, []string{"provider", "result"})

	// Submissions counts deploy submissions per path and outcome.
	Submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploy_submissions_total",
		Help: "Deploy submissions per path (typed, raw) and outcome (accepted, rejected, error).",
	}, []string{"path", "outcome"})
)
