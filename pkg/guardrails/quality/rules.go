package quality

import (
	"fmt"
	"regexp"
	"strings"
)

// ExpectedWordRange is the spec §4.5 completeness table.
type ExpectedWordRange struct{ Min, Max int }

// ExpectedWordRangeByContentType is spec §4.5's completeness expected-range table.
var ExpectedWordRangeByContentType = map[string]ExpectedWordRange{
	"article":                 {800, 2000},
	"blog_post":               {500, 1500},
	"academic_paper":          {3000, 8000},
	"business_document":       {500, 2000},
	"technical_documentation": {1000, 3000},
	"legal_document":          {1000, 5000},
	"medical_document":        {1000, 3000},
	"creative_writing":        {1000, 5000},
	"email":                   {50, 300},
	"social_media":            {10, 280},
}

var passiveVoiceRe = regexp.MustCompile(`(?i)\b(is|are|was|were|be|been|being)\s+\w+ed\b`)
var doubleSpaceRe = regexp.MustCompile(`  +`)

// ruleGrammar is a deterministic error-rate heuristic scorer (spec §4.5 step 4).
func ruleGrammar(content string) Metric {
	issues := len(doubleSpaceRe.FindAllString(content, -1))
	words := len(strings.Fields(content))
	rate := 0.0
	if words > 0 {
		rate = float64(issues) / float64(words)
	}
	score := clampScore(5 - rate*50)
	return Metric{
		Dimension:   DimensionGrammar,
		Score:       score,
		Level:       LevelForScore(score),
		Explanation: fmt.Sprintf("%d mechanical issue(s) detected across %d words", issues, words),
		Confidence:  0.8,
	}
}

// ruleReadability wraps the Flesch-Kincaid pipeline as a dimension scorer
// (spec §4.5 step 4, reusing step 2's computation).
func ruleReadability(content string) Metric {
	grade := fleschKincaidGrade(content)
	score := readabilityScore(grade)
	return Metric{
		Dimension:   DimensionReadability,
		Score:       score,
		Level:       LevelForScore(score),
		Explanation: fmt.Sprintf("Flesch-Kincaid grade level %.1f", grade),
		Confidence:  0.9,
	}
}

// ruleStructure checks paragraph length bounds, heading presence above 500
// words, and sentence-length variety (spec §4.5 step 4).
func ruleStructure(content string) Metric {
	metrics := basicMetrics(content)
	score := 5.0
	var notes []string

	paragraphs := strings.Split(content, "\n\n")
	for _, p := range paragraphs {
		words := len(strings.Fields(p))
		if words == 0 {
			continue
		}
		if words < 30 || words > 150 {
			score -= 0.3
			notes = append(notes, "paragraph length outside 30-150 word guideline")
			break
		}
	}

	hasHeading := strings.Contains(content, "\n#") || strings.Contains(content, "\n##")
	if metrics.WordCount > 500 && !hasHeading {
		score -= 0.5
		notes = append(notes, "no headings detected in content above 500 words")
	}

	if !hasSentenceLengthVariety(content) {
		score -= 0.3
		notes = append(notes, "low sentence-length variety")
	}

	score = clampScore(score)
	return Metric{
		Dimension:   DimensionStructure,
		Score:       score,
		Level:       LevelForScore(score),
		Explanation: strings.Join(notes, "; "),
		Confidence:  0.7,
	}
}

func hasSentenceLengthVariety(content string) bool {
	var lengths []int
	for _, s := range regexp.MustCompile(`[.!?]`).Split(content, -1) {
		n := len(strings.Fields(s))
		if n > 0 {
			lengths = append(lengths, n)
		}
	}
	if len(lengths) < 2 {
		return true
	}
	min, max := lengths[0], lengths[0]
	for _, l := range lengths {
		if l < min {
			min = l
		}
		if l > max {
			max = l
		}
	}
	return max-min >= 5
}

// ruleCompleteness scores word count against the content type's expected
// range (spec §4.5 step 4).
func ruleCompleteness(content, contentType string) Metric {
	metrics := basicMetrics(content)
	rng, ok := ExpectedWordRangeByContentType[contentType]
	if !ok {
		return Metric{Dimension: DimensionCompleteness, Score: 3.0, Level: LevelForScore(3.0),
			Explanation: "no expected range for unrecognized content type", Confidence: 0.3}
	}

	score := 5.0
	switch {
	case metrics.WordCount < rng.Min:
		deficit := float64(rng.Min-metrics.WordCount) / float64(rng.Min)
		score = clampScore(5 - deficit*5)
	case metrics.WordCount > rng.Max:
		excess := float64(metrics.WordCount-rng.Max) / float64(rng.Max)
		score = clampScore(5 - excess*3)
	}

	return Metric{
		Dimension:   DimensionCompleteness,
		Score:       score,
		Level:       LevelForScore(score),
		Explanation: fmt.Sprintf("%d words vs. expected %d-%d for %s", metrics.WordCount, rng.Min, rng.Max, contentType),
		Confidence:  0.85,
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

// identifyRuleIssues implements spec §4.5 step 6's rule pass: double
// spaces, sentences > 35 words, passive-voice regex, repeated-word
// detection (words longer than 4 characters appearing more than 10 times).
func identifyRuleIssues(content string) []Issue {
	var issues []Issue

	if doubleSpaceRe.MatchString(content) {
		issues = append(issues, Issue{Description: "contains double spaces", Source: "rule"})
	}

	for _, s := range regexp.MustCompile(`[.!?]`).Split(content, -1) {
		if len(strings.Fields(s)) > 35 {
			issues = append(issues, Issue{Description: "sentence exceeds 35 words", Source: "rule"})
			break
		}
	}

	if passiveVoiceRe.MatchString(content) {
		issues = append(issues, Issue{Description: "passive voice construction detected", Source: "rule"})
	}

	wordCounts := make(map[string]int)
	for _, w := range strings.Fields(strings.ToLower(content)) {
		trimmed := strings.Trim(w, ".,!?;:\"'()")
		if len(trimmed) > 4 {
			wordCounts[trimmed]++
		}
	}
	for word, n := range wordCounts {
		if n > 10 {
			issues = append(issues, Issue{Description: fmt.Sprintf("word %q repeated %d times", word, n), Source: "rule"})
		}
	}

	return dedupeIssues(issues)
}

func dedupeIssues(issues []Issue) []Issue {
	seen := map[string]struct{}{}
	var out []Issue
	for _, i := range issues {
		key := strings.ToLower(strings.TrimSpace(i.Description))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, i)
	}
	return out
}
