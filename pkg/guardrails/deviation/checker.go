package deviation

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

// Checker implements the Deviation Monitor (spec §4.6).
type Checker struct {
	backend backend.Backend
	log     *zap.Logger
}

// New builds a Checker.
func New(gen backend.Backend, log *zap.Logger) *Checker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Checker{backend: gen, log: log}
}

// Check runs the five-step pipeline (spec §4.6): pattern scan, semantic
// scan, per-objective compliance check, risk assessment, report synthesis.
func (c *Checker) Check(ctx context.Context, content string, objectives []Objective) Report {
	alerts := c.scan(ctx, content, objectives)
	compliance := c.checkAllObjectives(ctx, content, objectives)

	riskLevel, riskScore := assessRisk(alerts)
	overallCompliance := meanComplianceScore(compliance)
	actions := buildCorrectiveActions(alerts, compliance, riskLevel)

	return Report{
		Alerts:                 alerts,
		Compliance:              compliance,
		OverallRiskLevel:        riskLevel,
		RiskScore:               riskScore,
		OverallComplianceScore:  overallCompliance,
		CorrectiveActions:       actions,
	}
}

// scan runs the pattern pass (always) and the semantic pass concurrently,
// matching the hallucination checker's failure-isolation pattern: a
// semantic-pass failure must not cancel the pattern pass.
func (c *Checker) scan(ctx context.Context, content string, objectives []Objective) []Alert {
	var patternAlerts, semanticAlerts []Alert

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patternAlerts = scanPatterns(content)
		return nil
	})
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				c.log.Warn("semantic deviation scan panicked", zap.Any("recover", r))
			}
		}()
		semanticAlerts = scanSemantic(gctx, c.backend, objectives, content)
		return nil
	})
	_ = g.Wait()

	now := time.Now()
	all := append(patternAlerts, semanticAlerts...)
	for i := range all {
		if all[i].CreatedAt.IsZero() {
			all[i].CreatedAt = now
		}
	}
	return all
}

// checkAllObjectives runs one bounded-concurrent backend call per objective
// (spec §4.6 step 3).
func (c *Checker) checkAllObjectives(ctx context.Context, content string, objectives []Objective) []ComplianceResult {
	results := make([]ComplianceResult, len(objectives))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, obj := range objectives {
		i, obj := i, obj
		g.Go(func() error {
			results[i] = checkCompliance(gctx, c.backend, content, obj)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// assessRisk implements spec §4.6 step 4: overall_risk_level is critical if
// any critical alert, high if any major alert, medium if >= 3 moderate
// alerts, else low. risk_score is the severity-weighted mean.
func assessRisk(alerts []Alert) (RiskLevel, float64) {
	if len(alerts) == 0 {
		return RiskLow, 0
	}

	var weightSum float64
	var criticalCount, majorCount, moderateCount int
	for _, a := range alerts {
		weightSum += severityWeight[a.Severity]
		switch a.Severity {
		case SeverityCritical:
			criticalCount++
		case SeverityMajor:
			majorCount++
		case SeverityModerate:
			moderateCount++
		}
	}

	riskScore := weightSum / float64(len(alerts))

	var level RiskLevel
	switch {
	case criticalCount > 0:
		level = RiskCritical
	case majorCount > 0:
		level = RiskHigh
	case moderateCount >= 3:
		level = RiskMedium
	default:
		level = RiskLow
	}

	return level, riskScore
}

func meanComplianceScore(results []ComplianceResult) float64 {
	if len(results) == 0 {
		return 1.0
	}
	var sum float64
	for _, r := range results {
		sum += r.ComplianceScore
	}
	return sum / float64(len(results))
}

// buildCorrectiveActions implements spec §4.6 step 5's prioritization:
// critical alerts first, then non-compliant objectives' recommendations,
// then generic mitigation items derived from the risk level; duplicates
// removed.
func buildCorrectiveActions(alerts []Alert, compliance []ComplianceResult, riskLevel RiskLevel) []string {
	var actions []string

	sortedAlerts := make([]Alert, len(alerts))
	copy(sortedAlerts, alerts)
	sort.SliceStable(sortedAlerts, func(i, j int) bool {
		return severityWeight[sortedAlerts[i].Severity] > severityWeight[sortedAlerts[j].Severity]
	})
	for _, a := range sortedAlerts {
		if a.Severity == SeverityCritical && a.SuggestedCorrection != "" {
			actions = append(actions, a.SuggestedCorrection)
		}
	}

	for _, r := range compliance {
		if !r.Compliant {
			actions = append(actions, r.Recommendations...)
		}
	}

	switch riskLevel {
	case RiskCritical:
		actions = append(actions, "halt delivery and route content for human review")
	case RiskHigh:
		actions = append(actions, "revise content to restore alignment with project objectives")
	}

	return dedupeStrings(actions)
}

func dedupeStrings(items []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
