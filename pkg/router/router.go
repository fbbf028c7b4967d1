package router

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/worker"
)

const maxSupportingWorkers = 3

// Router classifies requests and produces RoutingDecisions (spec §4.1). It
// holds no long-lived mutable state beyond the statistics counters it owns
// exclusively (spec §5, §9).
type Router struct {
	registry  *worker.Registry
	backend   backend.Backend // optional: nil disables the analysis-augmentation call
	elevateOnDestructive bool
	log       *logrus.Entry
	stats     *statistics
}

// New builds a Router. backend may be nil, in which case route() always
// uses the deterministic keyword path (spec §4.1's fallback IS the primary
// path when no backend is wired).
func New(registry *worker.Registry, gen backend.Backend, elevateOnDestructive bool, log *logrus.Entry) *Router {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Router{
		registry:             registry,
		backend:              gen,
		elevateOnDestructive: elevateOnDestructive,
		log:                  log.WithField("component", "router"),
		stats:                newStatistics(),
	}
}

// Route implements spec §4.1's route(request) → RoutingDecision.
func (r *Router) Route(ctx context.Context, req Request) RoutingDecision {
	analysis, reasoning := r.analyzeWithFallback(ctx, req)

	primary, primaryScore := r.matchPrimaryWorker(req)
	supporting := r.selectSupportingWorkers(analysis, primary)

	breakdown := buildTaskBreakdown(primary, supporting, analysis)
	duration := estimateDuration(analysis.Complexity, len(supporting))
	permission := derivePermission(analysis.Risk, req.PermissionLevel, r.elevateOnDestructive && isDestructiveIntent(req))

	decision := RoutingDecision{
		PrimaryWorkerID:     primary,
		SupportingWorkerIDs: supporting,
		TaskBreakdown:       breakdown,
		Complexity:          analysis.Complexity,
		Risk:                analysis.Risk,
		RequiredPermission:  permission,
		EstimatedDurationS:  duration,
		Reasoning: fmt.Sprintf("%sSelected %s based on keyword match (score %.2f) and complexity=%s, risk=%s. Supporting agents: %s",
			reasoning, primary, primaryScore, analysis.Complexity, analysis.Risk, joinIDs(supporting)),
		DecidedAt: time.Now(),
	}

	r.stats.record(decision)
	return decision
}

// analyzeWithFallback attempts the optional generation-backend-assisted
// analysis pass; on any failure (or when no backend is wired) it falls back
// to the deterministic keyword classification, which is always computed so
// the fallback is free (spec §4.1 failure modes).
func (r *Router) analyzeWithFallback(ctx context.Context, req Request) (Analysis, string) {
	keywordAnalysis := analyzeTask(req)
	if r.backend == nil {
		return keywordAnalysis, ""
	}

	prompt := fmt.Sprintf("Classify this writing request's complexity (low/medium/high) and risk (low/medium/high): %s", req.Content)
	resp, err := r.backend.Generate(ctx, backend.GenerateRequest{Prompt: prompt, MaxTokens: 64})
	if err != nil {
		r.log.WithError(err).Warn("analysis backend call failed, falling back to keyword classification")
		return keywordAnalysis, fmt.Sprintf("fallback due to analysis failure: %v. ", err)
	}

	return refineAnalysis(keywordAnalysis, resp.Content), ""
}

// refineAnalysis lets a backend's free-text classification override the
// keyword-derived complexity: the first of "high", "low", "medium" found
// anywhere in the reply, checked in that order, wins. Risk and the feature
// flags stay keyword-derived.
func refineAnalysis(base Analysis, text string) Analysis {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "high"):
		base.Complexity = ComplexityHigh
	case strings.Contains(lower, "low"):
		base.Complexity = ComplexityLow
	case strings.Contains(lower, "medium"):
		base.Complexity = ComplexityMedium
	}
	return base
}

// matchPrimaryWorker scores every registered worker by keyword overlap and
// returns the argmax, falling back to the generalist when no worker scores
// above zero (spec §4.1 step 2).
func (r *Router) matchPrimaryWorker(req Request) (worker.ID, float64) {
	lower := strings.ToLower(req.Content)
	var best worker.ID
	bestScore := 0.0

	for _, w := range r.registry.All() {
		score := keywordScore(lower, w.Metadata())
		if score > bestScore {
			bestScore = score
			best = w.Metadata().ID
		}
	}

	if best == "" {
		return worker.IDGeneralist, 0
	}
	return best, bestScore
}

func keywordScore(lowerContent string, meta worker.Metadata) float64 {
	score := 0.0
	for kw := range meta.Keywords {
		if strings.Contains(lowerContent, kw) {
			score++
		}
	}
	return score
}

// selectSupportingWorkers adds up to maxSupportingWorkers workers driven by
// analysis feature flags (spec §4.1 step 3), deduplicated against primary
// and against each other, and dropping any worker missing from the registry
// (spec §4.1 step 7).
func (r *Router) selectSupportingWorkers(analysis Analysis, primary worker.ID) []worker.ID {
	var candidates []worker.ID
	if analysis.RequiresResearch {
		candidates = append(candidates, worker.IDResearchAssistant)
	}
	if analysis.RequiresCreativity {
		candidates = append(candidates, worker.IDCreativeEnhancer)
	}
	if analysis.Complexity == ComplexityHigh {
		candidates = append(candidates, worker.IDStructureArchitect, worker.IDStyleEditor)
	}

	seen := map[worker.ID]struct{}{primary: {}}
	var out []worker.ID
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		if !r.registry.IsRegistered(c) {
			r.log.WithField("worker_id", c).Debug("dropping supporting worker missing from registry")
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) >= maxSupportingWorkers {
			break
		}
	}
	return out
}

// buildTaskBreakdown produces the ordered subtask sequence (spec §4.1 step 4).
func buildTaskBreakdown(primary worker.ID, supporting []worker.ID, analysis Analysis) []TaskBreakdownItem {
	primaryID := uuid.NewString()
	items := []TaskBreakdownItem{{
		SubtaskID:          primaryID,
		Description:        "primary generation",
		AssignedWorker:     primary,
		Priority:           1,
		DependsOn:          nil,
		EstimatedDurationS: 60,
	}}

	allIDs := []string{primaryID}
	for i, w := range supporting {
		id := uuid.NewString()
		priority := 2
		if i > 0 {
			priority = 3
		}
		items = append(items, TaskBreakdownItem{
			SubtaskID:          id,
			Description:        fmt.Sprintf("supporting pass: %s", w),
			AssignedWorker:     w,
			Priority:           priority,
			DependsOn:          []string{primaryID},
			EstimatedDurationS: 45,
		})
		allIDs = append(allIDs, id)
	}

	if analysis.Risk != RiskLow || isQAEligible(analysis) {
		items = append(items, TaskBreakdownItem{
			SubtaskID:          uuid.NewString(),
			Description:        "quality assurance pass",
			AssignedWorker:     worker.IDGrammarChecker,
			Priority:           3,
			DependsOn:          allIDs,
			EstimatedDurationS: 30,
		})
	}

	return items
}

func isQAEligible(a Analysis) bool {
	return a.Risk == RiskHigh
}

// estimateDuration sums the base duration formula from spec §4.1 step 5.
func estimateDuration(complexity Complexity, supportingCount int) int {
	multiplier := map[Complexity]int{ComplexityLow: 1, ComplexityMedium: 2, ComplexityHigh: 4}[complexity]
	return 60*multiplier + 30*supportingCount
}

// derivePermission implements spec §4.1 step 6: risk-based derivation,
// restricted (never elevated) by any user-supplied permission level, with
// an optional forced elevation to `assistant` for destructive intent (the
// SPEC_FULL.md §10.2-configurable resolution of the §9 open question).
func derivePermission(risk RiskLevel, userSupplied PermissionLevel, forceAssistant bool) PermissionLevel {
	if forceAssistant {
		return PermissionAssistant
	}

	var computed PermissionLevel
	switch risk {
	case RiskHigh:
		computed = PermissionAssistant
	case RiskMedium:
		computed = PermissionCollaborative
	default:
		computed = PermissionSemiAutonomous
	}

	if userSupplied == "" {
		return computed
	}
	if userSupplied.Rank() < computed.Rank() {
		return userSupplied
	}
	return computed
}

func joinIDs(ids []worker.ID) string {
	if len(ids) == 0 {
		return "none"
	}
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = string(id)
	}
	return strings.Join(strs, ", ")
}
