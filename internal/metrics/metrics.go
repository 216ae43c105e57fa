package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thesisflow_logins_total",
			Help: "Total login attempts by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	ThesisRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thesisflow_thesis_requests_total",
			Help: "Thesis request workflow events",
		},
		[]string{"event"},
	)

	DefenseRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thesisflow_defense_requests_total",
			Help: "Defense request workflow events",
		},
		[]string{"event"},
	)

	GradesSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thesisflow_grades_submitted_total",
			Help: "Grades submitted by reviewer type",
		},
		[]string{"reviewer_type"},
	)
)
