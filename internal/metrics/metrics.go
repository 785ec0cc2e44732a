package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Action results.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultPlanned = "planned"
)

// Workflow outcomes.
const (
	WorkflowProcessed = "processed"
	WorkflowSkipped   = "skipped"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apimetrics_deploy_api_requests_total",
			Help: "Total number of APImetrics API requests",
		},
		[]string{"operation", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apimetrics_deploy_api_request_duration_seconds",
			Help:    "APImetrics API request latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	deploymentActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apimetrics_deploy_actions_total",
			Help: "Total number of deployment reconcile actions",
		},
		[]string{"action", "result"},
	)

	workflowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apimetrics_deploy_workflows_total",
			Help: "Total number of workflows seen, by outcome",
		},
		[]string{"outcome"},
	)

	lastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apimetrics_deploy_last_run_timestamp_seconds",
			Help: "Unix time the last reconcile run finished",
		},
	)
)

// RecordAPIRequest records one API round-trip. A status of 0 means the
// request never got a response.
func RecordAPIRequest(operation string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequestsTotal.WithLabelValues(operation, label).Inc()
	apiRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordAction(action, result string) {
	deploymentActionsTotal.WithLabelValues(action, result).Inc()
}

func RecordWorkflow(outcome string) {
	workflowsTotal.WithLabelValues(outcome).Inc()
}

func MarkRunFinished(t time.Time) {
	lastRunTimestamp.Set(float64(t.Unix()))
}

// WriteTextfile dumps the default registry in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
