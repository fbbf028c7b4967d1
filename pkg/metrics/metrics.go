// Package metrics exposes prometheus collectors for workflow throughput,
// worker performance, and guardrail scoring, mirroring the teacher's
// pkg/metrics package shape (counters/histograms/gauges, a Timer helper,
// /metrics exposition via Server).
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WorkflowsTotal counts terminal workflows by final status.
	WorkflowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writecrew_workflows_total",
		Help: "Total workflows reaching a terminal status, labeled by status.",
	}, []string{"status"})

	// WorkflowProcessingDuration tracks end-to-end workflow wall time.
	WorkflowProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "writecrew_workflow_processing_duration_seconds",
		Help:    "Workflow end-to-end processing time in seconds.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// TasksTotal counts terminal tasks by worker id and outcome.
	TasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writecrew_tasks_total",
		Help: "Total tasks reaching a terminal status, labeled by worker id and outcome.",
	}, []string{"worker_id", "outcome"})

	// TaskProcessingDuration tracks per-task processing time by worker id.
	TaskProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "writecrew_task_processing_duration_seconds",
		Help:    "Per-task processing time in seconds, labeled by worker id.",
		Buckets: prometheus.DefBuckets,
	}, []string{"worker_id"})

	// TaskRetriesTotal counts retry attempts by worker id.
	TaskRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writecrew_task_retries_total",
		Help: "Total task retry attempts, labeled by worker id.",
	}, []string{"worker_id"})

	// GuardrailRiskScore records the risk/quality score emitted by a
	// guardrail checker, labeled by checker name.
	GuardrailRiskScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "writecrew_guardrail_score",
		Help:    "Guardrail checker scores (risk_score or overall_score), labeled by checker.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"checker"})

	// GuardrailAcceptanceTotal counts composed reports by acceptance flag.
	GuardrailAcceptanceTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "writecrew_guardrail_acceptance_total",
		Help: "Total guardrail reports, labeled by accepted true/false.",
	}, []string{"accepted"})

	// ActiveWorkflows is a gauge of workflows currently executing.
	ActiveWorkflows = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "writecrew_active_workflows",
		Help: "Number of workflows currently executing.",
	})
)

// RecordWorkflow records a terminal workflow's status and processing time.
func RecordWorkflow(status string, duration time.Duration) {
	WorkflowsTotal.WithLabelValues(status).Inc()
	WorkflowProcessingDuration.Observe(duration.Seconds())
}

// RecordTask records a terminal task's outcome and processing time.
func RecordTask(workerID, outcome string, duration time.Duration) {
	TasksTotal.WithLabelValues(workerID, outcome).Inc()
	TaskProcessingDuration.WithLabelValues(workerID).Observe(duration.Seconds())
}

// RecordTaskRetry records one retry attempt for a worker.
func RecordTaskRetry(workerID string) {
	TaskRetriesTotal.WithLabelValues(workerID).Inc()
}

// RecordGuardrailScore records a checker's emitted score.
func RecordGuardrailScore(checker string, score float64) {
	GuardrailRiskScore.WithLabelValues(checker).Observe(score)
}

// RecordGuardrailAcceptance records a composed report's acceptance flag.
func RecordGuardrailAcceptance(accepted bool) {
	label := "false"
	if accepted {
		label = "true"
	}
	GuardrailAcceptanceTotal.WithLabelValues(label).Inc()
}

// Timer measures an operation's duration and records it on Stop via the
// supplied observer func, matching the teacher's Timer helper shape.
type Timer struct {
	start    time.Time
	observe  func(time.Duration)
}

// NewTimer starts a Timer that reports its elapsed duration to observe.
func NewTimer(observe func(time.Duration)) *Timer {
	return &Timer{start: time.Now(), observe: observe}
}

// Stop records the elapsed duration and returns it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	if t.observe != nil {
		t.observe(elapsed)
	}
	return elapsed
}
