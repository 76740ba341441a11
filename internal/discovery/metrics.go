package discovery

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_discovery_jobs_started_total",
		Help: "Total number of discovery jobs started",
	})

	jobsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_discovery_jobs_finished_total",
			Help: "Total number of discovery jobs finished, by terminal status",
		},
		[]string{"status"},
	)

	candidatesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leadscout_discovery_candidates_total",
			Help: "Candidates classified, by website status and outcome",
		},
		[]string{"website_status", "outcome"},
	)

	leadsQualified = promauto.NewCounter(prometheus.CounterOpts{
		Name: "leadscout_discovery_leads_qualified_total",
		Help: "Total number of leads persisted",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "leadscout_discovery_job_duration_seconds",
		Help:    "Duration of discovery jobs in seconds",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)

// Candidate outcomes.
const (
	outcomeFiltered   = "filtered"
	outcomeExcluded   = "excluded"
	outcomeBelowScore = "below_threshold"
	outcomeQualified  = "qualified"
)
