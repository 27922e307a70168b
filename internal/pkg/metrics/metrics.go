package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supplytwin",
		Name:      "runs_submitted_total",
		Help:      "Simulation submissions by outcome.",
	}, []string{"status"})

	ScenarioTransforms = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supplytwin",
		Name:      "scenario_transforms_total",
		Help:      "Scenario transforms per input file, applied or skipped.",
	}, []string{"file", "result"})

	OutputFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "supplytwin",
		Name:      "output_fetches_total",
		Help:      "Output CSV fetches by output kind and outcome.",
	}, []string{"output", "result"})

	RunPersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "supplytwin",
		Name:      "run_persist_failures_total",
		Help:      "Run records that could not be persisted after a successful submission.",
	})
)
