// Package quality implements the Quality Assessor (spec §4.5): scores
// content across ten named dimensions, identifies issues, and emits
// prioritized recommendations.
package quality

// Dimension is the closed quality-dimension enum (spec §3).
type Dimension string

const (
	DimensionClarity      Dimension = "clarity"
	DimensionCoherence    Dimension = "coherence"
	DimensionGrammar      Dimension = "grammar"
	DimensionStyle        Dimension = "style"
	DimensionAccuracy     Dimension = "accuracy"
	DimensionCompleteness Dimension = "completeness"
	DimensionEngagement   Dimension = "engagement"
	DimensionStructure    Dimension = "structure"
	DimensionTone         Dimension = "tone"
	DimensionReadability  Dimension = "readability"
)

// AllDimensions lists the ten dimensions in a stable order.
var AllDimensions = []Dimension{
	DimensionClarity, DimensionCoherence, DimensionGrammar, DimensionStyle, DimensionAccuracy,
	DimensionCompleteness, DimensionEngagement, DimensionStructure, DimensionTone, DimensionReadability,
}

// Level is a QualityMetric's derived qualitative level (spec §3).
type Level string

const (
	LevelExcellent   Level = "excellent"
	LevelGood        Level = "good"
	LevelAcceptable  Level = "acceptable"
	LevelPoor        Level = "poor"
	LevelUnacceptable Level = "unacceptable"
)

// LevelForScore derives Level from score, thresholds per spec §3: excellent
// ≥4.5, good ≥3.5, acceptable ≥2.5, poor ≥1.5, else unacceptable. This
// mapping is monotone by construction (spec §8 testable property).
func LevelForScore(score float64) Level {
	switch {
	case score >= 4.5:
		return LevelExcellent
	case score >= 3.5:
		return LevelGood
	case score >= 2.5:
		return LevelAcceptable
	case score >= 1.5:
		return LevelPoor
	default:
		return LevelUnacceptable
	}
}

// Metric is one dimension's scored outcome (spec §3).
type Metric struct {
	Dimension   Dimension
	Score       float64
	Level       Level
	Explanation string
	Suggestions []string
	Confidence  float64
}

// Issue is one identified content problem (spec §4.5 step 6).
type Issue struct {
	Description string
	Source      string // "rule" or "ai"
}

// BasicMetrics is spec §4.5 step 1's output.
type BasicMetrics struct {
	WordCount       int
	SentenceCount   int
	ParagraphCount  int
	UniqueWordCount int
	CharacterCount  int
}

// Report is the Quality Assessor's output (spec §4.5 step 7).
type Report struct {
	Basic               BasicMetrics
	Metrics             []Metric
	OverallScore        float64
	OverallLevel        Level
	Strengths           []Dimension
	ImprovementPriority []Dimension
	Issues              []Issue
	Recommendations     []string
}
