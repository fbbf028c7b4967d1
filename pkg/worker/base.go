package worker

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// GenerateFunc is the narrow slice of backend.Backend a worker needs,
// declared locally to avoid an import cycle with pkg/backend (which never
// needs to know about workers).
type GenerateFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

// Base provides the shared plumbing every reference worker embeds: timing,
// metrics recording, and the confidence/collaboration heuristics from
// base_agent.py (_estimate_task_confidence, _suggest_collaboration), carried
// forward per SPEC_FULL.md §12.
type Base struct {
	meta      Metadata
	caps      Capabilities
	generate  GenerateFunc
	metrics   *MetricsCollector
	timeout   time.Duration
	log       *logrus.Entry
}

// NewBase constructs the embeddable base. timeout is the per-worker
// execution deadline (§4.2, default 30s).
func NewBase(meta Metadata, caps Capabilities, generate GenerateFunc, timeout time.Duration, log *logrus.Entry) Base {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return Base{
		meta:     meta,
		caps:     caps,
		generate: generate,
		metrics:  NewMetricsCollector(),
		timeout:  timeout,
		log:      log.WithField("worker_id", string(meta.ID)),
	}
}

// Metadata implements part of Worker.
func (b *Base) Metadata() Metadata { return b.meta }

// Capabilities implements part of Worker.
func (b *Base) Capabilities() Capabilities { return b.caps }

// Health implements part of Worker, deriving a health score the way
// base_agent.py's health_check does: start healthy, deduct for low recent
// success rate or high average processing time.
func (b *Base) Health() Health {
	snap := b.metrics.Snapshot()

	score := 1.0
	var issues []string

	rate := snap.SuccessRate()
	if rate < 0.5 {
		score -= 0.3
		issues = append(issues, "low recent success rate")
	}
	if snap.AvgProcessingTime > 60*time.Second {
		score -= 0.2
		issues = append(issues, "high average processing time")
	}

	status := "healthy"
	switch {
	case score < 0.5:
		status = "unhealthy"
	case score < 0.8:
		status = "degraded"
	}

	return Health{
		Healthy:           status != "unhealthy",
		Issues:            issues,
		RecentSuccessRate: rate,
	}
}

// withTimeout bounds ctx to the worker's declared per-task timeout.
func (b *Base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// record finalizes a TaskResult's timing, updates the metrics collector, and
// returns the result unchanged for easy chaining at call sites.
func (b *Base) record(taskID string, start time.Time, result TaskResult) TaskResult {
	result.ProcessingTime = time.Since(start)
	b.metrics.Record(TaskSummary{
		TaskID:         taskID,
		Status:         result.Status,
		Confidence:     result.Confidence,
		ProcessingTime: result.ProcessingTime,
		At:             time.Now(),
	})
	b.log.WithFields(logrus.Fields{
		"task_id":    taskID,
		"status":     result.Status,
		"confidence": result.Confidence,
	}).Debug("task execution recorded")
	return result
}

// estimateConfidence mirrors base_agent.py's _estimate_task_confidence: a
// base rate adjusted by content length and keyword-overlap specialization.
func estimateConfidence(meta Metadata, input TaskInput) float64 {
	confidence := 0.7

	wordCount := len(strings.Fields(input.Content))
	switch {
	case wordCount > 2000:
		confidence -= 0.1
	case wordCount < 20:
		confidence -= 0.15
	}

	lower := strings.ToLower(input.Content)
	matches := 0
	for kw := range meta.Keywords {
		if strings.Contains(lower, kw) {
			matches++
		}
	}
	if matches > 0 {
		confidence += 0.05 * float64(min(matches, 3))
	}

	return clamp(confidence, 0, 1)
}

// suggestCollaboration mirrors base_agent.py's _suggest_collaboration:
// keyword-based nudges toward a complementary worker.
func suggestCollaboration(content string) []ID {
	lower := strings.ToLower(content)
	var suggestions []ID

	switch {
	case strings.Contains(lower, "research") || strings.Contains(lower, "source") || strings.Contains(lower, "citation"):
		suggestions = append(suggestions, IDResearchAssistant)
	}
	switch {
	case strings.Contains(lower, "tone") || strings.Contains(lower, "voice") || strings.Contains(lower, "style"):
		suggestions = append(suggestions, IDStyleEditor)
	}
	switch {
	case strings.Contains(lower, "structure") || strings.Contains(lower, "outline") || strings.Contains(lower, "section"):
		suggestions = append(suggestions, IDStructureArchitect)
	}
	return suggestions
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
