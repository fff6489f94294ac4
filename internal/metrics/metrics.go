package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_transitions_total",
			Help: "Application workflow operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_collaborator_failures_total",
			Help: "Failed calls to external collaborators",
		},
		[]string{"collaborator"},
	)

	CVJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_cv_jobs_total",
			Help: "CV analysis jobs by final status",
		},
		[]string{"status"},
	)
)

// ObserveTransition records the outcome of a workflow operation.
func ObserveTransition(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	WorkflowTransitions.WithLabelValues(operation, outcome).Inc()
}
