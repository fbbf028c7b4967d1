// Package guardrails defines the shared report envelope and acceptance-flag
// computation that gate a completed workflow (spec §6.4), composing the
// three checkers in pkg/guardrails/hallucination, .../quality, and
// .../deviation.
package guardrails

import (
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/deviation"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/hallucination"
	"github.com/kimhons/ai-writing-platform-sub000/pkg/guardrails/quality"
)

// ContentTypeQualityThreshold is the minimum quality.overall_score a content
// type must reach for the acceptance flag, per spec §6.4.
var ContentTypeQualityThreshold = map[string]float64{
	"academic_paper":           4.5,
	"legal_document":           4.5,
	"medical_document":         4.5,
	"business_document":        4.0,
	"technical_documentation":  4.0,
	"article":                  3.5,
	"creative_writing":         3.5,
	"blog_post":                3.0,
	"email":                    3.0,
	"social_media":             2.5,
}

// Report is the aggregate of all three guardrail checkers plus the derived
// acceptance flag for one workflow (spec §6.4). Reports are immutable once
// emitted and a workflow has at most one per checker (spec §3 invariant).
type Report struct {
	Hallucination hallucination.Report
	Quality       quality.Report
	Deviation     deviation.Report
	Acceptance    bool
}

// Compose builds the Report and computes the acceptance flag:
// (hallucination.risk_score < 0.3) ∧ (quality.overall_score ≥ content_type
// threshold) ∧ (deviation.overall_risk_level ∈ {low, medium}) (spec §6.4).
// A critical verification level with unresolved needs_review claims forces
// acceptance to false regardless of the other terms (spec §7).
func Compose(contentType string, h hallucination.Report, q quality.Report, d deviation.Report, verificationLevel hallucination.VerificationLevel) Report {
	threshold, ok := ContentTypeQualityThreshold[contentType]
	if !ok {
		threshold = 3.0
	}

	acceptance := h.RiskScore < 0.3 &&
		q.OverallScore >= threshold &&
		(d.OverallRiskLevel == deviation.RiskLow || d.OverallRiskLevel == deviation.RiskMedium)

	if verificationLevel == hallucination.VerificationCritical && h.HasUnresolvedNeedsReview() {
		acceptance = false
	}

	return Report{Hallucination: h, Quality: q, Deviation: d, Acceptance: acceptance}
}
