package router

import "strings"

var highComplexityWords = []string{"comprehensive", "detailed", "complex", "multi-chapter"}
var lowComplexityWords = []string{"fix", "correct", "simple", "quick"}

var highRiskWords = []string{"delete", "replace all", "overwrite"}
var mediumRiskWords = []string{"edit", "modify"}
var lowRiskWords = []string{"suggest", "recommend", "highlight"}

var researchWords = []string{"research", "study", "studies", "investigate", "source", "cite", "citation"}
var creativityWords = []string{"creative", "imagine", "story", "poem", "narrative", "fiction"}
var technicalWords = []string{"technical", "code", "api", "architecture", "specification", "algorithm"}
var currentDataWords = []string{"latest", "current", "recent", "today", "this year", "up-to-date"}
var expertSourceWords = []string{"expert", "peer-reviewed", "academic", "scholarly", "authoritative"}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

// analyzeTask classifies complexity/risk and extracts feature flags from the
// request text (spec §4.1 step 1). It is pure and deterministic, matching
// the keyword-bucket approach in master_router.py's TaskAnalysisTool._run.
func analyzeTask(req Request) Analysis {
	lower := strings.ToLower(req.Content)

	complexity := ComplexityMedium
	switch {
	case containsAny(lower, highComplexityWords):
		complexity = ComplexityHigh
	case containsAny(lower, lowComplexityWords):
		complexity = ComplexityLow
	}

	// No matching bucket resolves to RiskLow (master_router.py initializes
	// risk_level = 'low' and only overwrites it on a match).
	risk := RiskLow
	switch {
	case containsAny(lower, highRiskWords):
		risk = RiskHigh
	case containsAny(lower, mediumRiskWords):
		risk = RiskMedium
	case containsAny(lower, lowRiskWords):
		risk = RiskLow
	}

	return Analysis{
		Complexity:            complexity,
		Risk:                  risk,
		RequiresResearch:      containsAny(lower, researchWords),
		RequiresCreativity:    containsAny(lower, creativityWords),
		RequiresTechnical:     containsAny(lower, technicalWords),
		RequiresCurrentData:   containsAny(lower, currentDataWords),
		RequiresExpertSources: containsAny(lower, expertSourceWords),
	}
}

// isDestructiveIntent reports whether the request text matches the
// high-risk/destructive keyword bucket, used by permission derivation's
// forced-elevation policy (spec §9 open question, resolved by SPEC_FULL.md
// §10.2's configurable PermissionConfig.ElevateOnDestructiveIntent).
func isDestructiveIntent(req Request) bool {
	return containsAny(strings.ToLower(req.Content), highRiskWords)
}
