package quality

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

// Checker implements the Quality Assessor (spec §4.5).
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

// Check runs the seven-step pipeline (spec §4.5): basic metrics,
// readability, AI dimension pass, rule dimension pass, fusion, issue
// identification, report synthesis.
func (c *Checker) Check(ctx context.Context, content, contentType string) Report {
	basic := basicMetrics(content)

	ruleMetrics := map[Dimension]Metric{
		DimensionGrammar:      ruleGrammar(content),
		DimensionReadability:  ruleReadability(content),
		DimensionStructure:    ruleStructure(content),
		DimensionCompleteness: ruleCompleteness(content, contentType),
	}

	aiMetrics, aiIssues := c.aiPass(ctx, content, contentType)

	fused := fuseDimensions(ruleMetrics, aiMetrics)

	ruleIssues := identifyRuleIssues(content)
	issues := identifyIssues(ruleIssues, aiIssues)

	report := synthesize(basic, fused, issues)
	return report
}

// aiPass makes a single backend call covering all ten dimensions, matching
// spec §4.5 step 3's "one AI call per assessment" design. On backend
// failure or unparseable output it returns an empty map so fusion falls
// back to rule-only metrics for every dimension (spec §4.5 step 5).
func (c *Checker) aiPass(ctx context.Context, content, contentType string) (map[Dimension]Metric, []Issue) {
	if c.backend == nil {
		return nil, nil
	}

	prompt := buildAssessmentPrompt(content, contentType)
	resp, err := c.backend.Generate(ctx, backend.GenerateRequest{Prompt: prompt, MaxTokens: 1200})
	if err != nil {
		c.log.Warn("quality AI pass failed, falling back to rule-only scoring", zap.Error(err))
		return nil, nil
	}

	return parseAssessment(resp.Content)
}

func buildAssessmentPrompt(content, contentType string) string {
	var b strings.Builder
	b.WriteString("Score the following ")
	b.WriteString(contentType)
	b.WriteString(" on each dimension (clarity, coherence, grammar, style, accuracy, completeness, ")
	b.WriteString("engagement, structure, tone, readability) from 0 to 5. ")
	b.WriteString("Reply with one line per dimension as dimension|score|explanation, ")
	b.WriteString("then a final ISSUES: line listing any problems found, one per semicolon.\n\n")
	b.WriteString(content)
	return b.String()
}

// parseAssessment parses the "dimension|score|explanation" line format and
// a trailing "ISSUES: ..." line.
func parseAssessment(text string) (map[Dimension]Metric, []Issue) {
	metrics := make(map[Dimension]Metric)
	var issues []Issue

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(strings.ToUpper(line), "ISSUES:") {
			rest := line[strings.Index(line, ":")+1:]
			for _, part := range strings.Split(rest, ";") {
				part = strings.TrimSpace(part)
				if part != "" {
					issues = append(issues, Issue{Description: part, Source: "ai"})
				}
			}
			continue
		}

		fields := strings.SplitN(line, "|", 3)
		if len(fields) != 3 {
			continue
		}

		dim := Dimension(strings.ToLower(strings.TrimSpace(fields[0])))
		if !isKnownDimension(dim) {
			continue
		}

		var score float64
		if _, err := fmt.Sscanf(strings.TrimSpace(fields[1]), "%f", &score); err != nil {
			continue
		}
		score = clampScore(score)

		metrics[dim] = Metric{
			Dimension:   dim,
			Score:       score,
			Level:       LevelForScore(score),
			Explanation: strings.TrimSpace(fields[2]),
			Confidence:  0.75,
		}
	}

	if len(issues) > 10 {
		issues = issues[:10]
	}
	return metrics, issues
}

func isKnownDimension(d Dimension) bool {
	for _, known := range AllDimensions {
		if known == d {
			return true
		}
	}
	return false
}

// fuseDimensions combines rule and AI metrics per dimension using the
// 0.7 AI / 0.3 rule weighting (spec §4.5 step 5) when both are present;
// falls back to whichever pass produced the dimension otherwise.
func fuseDimensions(rule, ai map[Dimension]Metric) []Metric {
	var fused []Metric
	for _, dim := range AllDimensions {
		r, hasRule := rule[dim]
		a, hasAI := ai[dim]

		switch {
		case hasRule && hasAI:
			score := 0.7*a.Score + 0.3*r.Score
			fused = append(fused, Metric{
				Dimension:   dim,
				Score:       score,
				Level:       LevelForScore(score),
				Explanation: a.Explanation,
				Confidence:  0.7*a.Confidence + 0.3*r.Confidence,
			})
		case hasAI:
			fused = append(fused, a)
		case hasRule:
			fused = append(fused, r)
		}
	}
	return fused
}

func identifyIssues(ruleIssues, aiIssues []Issue) []Issue {
	return dedupeIssues(append(ruleIssues, aiIssues...))
}

// synthesize builds the final report (spec §4.5 step 7): overall_score as
// the mean of fused dimension scores (default 3.0 when no dimension was
// scored), overall_level, strengths (dimensions scoring >= 4.0), the three
// lowest-scoring dimensions as improvement priority, and recommendations.
func synthesize(basic BasicMetrics, fused []Metric, issues []Issue) Report {
	report := Report{Basic: basic, Metrics: fused, Issues: issues}

	if len(fused) == 0 {
		report.OverallScore = 3.0
		report.OverallLevel = LevelForScore(3.0)
		return report
	}

	var sum float64
	for _, m := range fused {
		sum += m.Score
		if m.Score >= 4.0 {
			report.Strengths = append(report.Strengths, m.Dimension)
		}
	}
	report.OverallScore = sum / float64(len(fused))
	report.OverallLevel = LevelForScore(report.OverallScore)

	sorted := make([]Metric, len(fused))
	copy(sorted, fused)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score < sorted[j].Score })

	limit := 3
	if limit > len(sorted) {
		limit = len(sorted)
	}
	for i := 0; i < limit; i++ {
		report.ImprovementPriority = append(report.ImprovementPriority, sorted[i].Dimension)
	}

	report.Recommendations = buildRecommendations(sorted, limit)
	return report
}

func buildRecommendations(sortedAscending []Metric, lowCount int) []string {
	var recs []string
	for i := 0; i < lowCount; i++ {
		m := sortedAscending[i]
		if m.Explanation != "" {
			recs = append(recs, fmt.Sprintf("improve %s: %s", m.Dimension, m.Explanation))
		} else {
			recs = append(recs, fmt.Sprintf("improve %s", m.Dimension))
		}
	}
	return recs
}
