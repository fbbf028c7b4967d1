package orchestrator

import (
	"sync"
	"time"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

// WorkerStats is a per-worker rolling aggregate (spec §4.3: "total_tasks,
// successful_tasks, rolling average processing_time, success_rate").
type WorkerStats struct {
	TotalTasks      int
	SuccessfulTasks int
	AvgProcessingTime time.Duration
}

// SuccessRate returns SuccessfulTasks/TotalTasks, or 0 when no tasks ran.
func (s WorkerStats) SuccessRate() float64 {
	if s.TotalTasks == 0 {
		return 0
	}
	return float64(s.SuccessfulTasks) / float64(s.TotalTasks)
}

// GlobalMetrics is the Orchestrator's metrics() response (spec §4.3).
type GlobalMetrics struct {
	TotalWorkflows      int
	SuccessfulWorkflows int
	FailedWorkflows     int
	CancelledWorkflows  int
	AvgProcessingTime   time.Duration
	ByWorker            map[worker.ID]WorkerStats
}

// metricsCollector is the process-wide mutable state the Orchestrator owns
// exclusively (spec §5, §9's encapsulated-metrics-collector design note).
type metricsCollector struct {
	mu                  sync.Mutex
	totalWorkflows      int
	successful          int
	failed              int
	cancelled           int
	totalProcessingNs   int64
	byWorkerTotal       map[worker.ID]int
	byWorkerSuccessful  map[worker.ID]int
	byWorkerProcessingNs map[worker.ID]int64
}

func newMetricsCollector() *metricsCollector {
	return &metricsCollector{
		byWorkerTotal:        make(map[worker.ID]int),
		byWorkerSuccessful:   make(map[worker.ID]int),
		byWorkerProcessingNs: make(map[worker.ID]int64),
	}
}

// recordWorkflow updates the rolling-average workflow formula, matching
// agent_orchestrator.py's `(current_avg*(n-1)+new)/n` update.
func (m *metricsCollector) recordWorkflow(status string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalWorkflows++
	switch status {
	case "completed":
		m.successful++
	case "failed":
		m.failed++
	case "cancelled":
		m.cancelled++
	}
	m.totalProcessingNs += elapsed.Nanoseconds()
}

func (m *metricsCollector) recordTask(id worker.ID, succeeded bool, processingTime time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byWorkerTotal[id]++
	if succeeded {
		m.byWorkerSuccessful[id]++
	}
	m.byWorkerProcessingNs[id] += processingTime.Nanoseconds()
}

func (m *metricsCollector) snapshot() GlobalMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	g := GlobalMetrics{
		TotalWorkflows:      m.totalWorkflows,
		SuccessfulWorkflows: m.successful,
		FailedWorkflows:     m.failed,
		CancelledWorkflows:  m.cancelled,
		ByWorker:            make(map[worker.ID]WorkerStats, len(m.byWorkerTotal)),
	}
	if m.totalWorkflows > 0 {
		g.AvgProcessingTime = time.Duration(m.totalProcessingNs / int64(m.totalWorkflows))
	}
	for id, total := range m.byWorkerTotal {
		var avg time.Duration
		if total > 0 {
			avg = time.Duration(m.byWorkerProcessingNs[id] / int64(total))
		}
		g.ByWorker[id] = WorkerStats{
			TotalTasks:        total,
			SuccessfulTasks:   m.byWorkerSuccessful[id],
			AvgProcessingTime: avg,
		}
	}
	return g
}

// AllocationFlag names a worker the orchestrator's per-worker metrics
// suggest is a poor fit for its current task share (SPEC_FULL.md §12,
// carried from agent_orchestrator.py's optimize_agent_allocation).
type AllocationFlag struct {
	WorkerID worker.ID
	Reason   string
}

func (m *metricsCollector) allocationReport() []AllocationFlag {
	snap := m.snapshot()
	var flags []AllocationFlag
	for id, stats := range snap.ByWorker {
		if stats.TotalTasks < 5 {
			continue
		}
		if stats.SuccessRate() < 0.7 {
			flags = append(flags, AllocationFlag{WorkerID: id, Reason: "success rate below 70% over sufficient sample size"})
		}
	}
	return flags
}
