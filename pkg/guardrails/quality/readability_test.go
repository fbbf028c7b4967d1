package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountSyllablesSimpleWords(t *testing.T) {
	assert.Equal(t, 1, countSyllables("cat"))
	// Two vowel groups, minus one for the trailing 'e'.
	assert.Equal(t, 1, countSyllables("table"))
	assert.Equal(t, 1, countSyllables("the"))
	assert.Equal(t, 0, countSyllables("123"))
}

func TestCountSyllablesMinimumOne(t *testing.T) {
	assert.GreaterOrEqual(t, countSyllables("rhythm"), 1)
}

func TestBasicMetricsCountsWordsSentencesParagraphs(t *testing.T) {
	content := "First sentence here. Second one!\n\nNew paragraph starts now."
	m := basicMetrics(content)
	assert.Equal(t, 9, m.WordCount)
	assert.Equal(t, 3, m.SentenceCount)
	assert.Equal(t, 2, m.ParagraphCount)
}

func TestBasicMetricsEmptyContent(t *testing.T) {
	m := basicMetrics("")
	assert.Equal(t, 0, m.WordCount)
	assert.Equal(t, 0, m.ParagraphCount)
}

func TestReadabilityScoreMonotoneDecreasingInGrade(t *testing.T) {
	lowGrade := readabilityScore(8)
	midGrade := readabilityScore(12)
	highGrade := readabilityScore(16)
	assert.Greater(t, lowGrade, midGrade)
	assert.Greater(t, midGrade, highGrade)
}

func TestReadabilityScoreClampedToRange(t *testing.T) {
	assert.Equal(t, 5.0, readabilityScore(-100))
	assert.Equal(t, 0.0, readabilityScore(100))
}

func TestLevelForScoreMonotone(t *testing.T) {
	scores := []float64{0, 1, 1.5, 2.5, 3.5, 4.5, 5}
	levelRank := map[Level]int{
		LevelUnacceptable: 0, LevelPoor: 1, LevelAcceptable: 2, LevelGood: 3, LevelExcellent: 4,
	}
	prevRank := -1
	for _, s := range scores {
		rank := levelRank[LevelForScore(s)]
		assert.GreaterOrEqual(t, rank, prevRank)
		prevRank = rank
	}
}

func TestFleschKincaidGradeZeroWhenNoSentences(t *testing.T) {
	assert.Equal(t, 0.0, fleschKincaidGrade(""))
	assert.Equal(t, 0.0, fleschKincaidGrade(strings.Repeat(" ", 5)))
}
