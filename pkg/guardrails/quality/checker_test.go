package quality

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

func TestCheckWithoutBackendFallsBackToRuleOnlyScoring(t *testing.T) {
	c := New(nil, nil)
	report := c.Check(context.Background(), "This is a short article about testing software systems carefully.", "article")

	require.NotEmpty(t, report.Metrics)
	assert.Greater(t, report.OverallScore, 0.0)
	for _, m := range report.Metrics {
		assert.LessOrEqual(t, m.Score, 5.0)
		assert.GreaterOrEqual(t, m.Score, 0.0)
	}
}

func TestCheckFusesAIAndRuleScores(t *testing.T) {
	mock := backend.NewMockBackend(
		"clarity|4.5|clear writing\ngrammar|5|no issues\nISSUES: minor repetition",
	)
	c := New(mock, nil)
	report := c.Check(context.Background(), "Some example content for assessment purposes here.", "blog_post")

	found := false
	for _, m := range report.Metrics {
		if m.Dimension == DimensionClarity {
			found = true
			assert.InDelta(t, 4.5, m.Score, 0.01)
		}
	}
	assert.True(t, found, "AI-only dimension should appear in fused metrics")

	var sawAIIssue bool
	for _, i := range report.Issues {
		if i.Source == "ai" {
			sawAIIssue = true
		}
	}
	assert.True(t, sawAIIssue)
}

func TestCompletenessScoresWithinExpectedRangeHighly(t *testing.T) {
	content := ""
	for i := 0; i < 60; i++ {
		content += "word "
	}
	m := ruleCompleteness(content, "email")
	assert.Equal(t, 5.0, m.Score)
}

func TestCompletenessPenalizesShortContent(t *testing.T) {
	m := ruleCompleteness("too short", "article")
	assert.Less(t, m.Score, 5.0)
}

func TestIdentifyRuleIssuesDetectsDoubleSpaceAndRepetition(t *testing.T) {
	content := "This  has a double space. "
	for i := 0; i < 12; i++ {
		content += "repeated repeated "
	}
	issues := identifyRuleIssues(content)

	var sawDouble, sawRepeat bool
	for _, i := range issues {
		if i.Description == "contains double spaces" {
			sawDouble = true
		}
		if i.Source == "rule" && i.Description != "contains double spaces" && i.Description != "sentence exceeds 35 words" {
			sawRepeat = true
		}
	}
	assert.True(t, sawDouble)
	assert.True(t, sawRepeat)
}

func TestSynthesizeDefaultsToThreeWhenNoMetrics(t *testing.T) {
	report := synthesize(BasicMetrics{}, nil, nil)
	assert.Equal(t, 3.0, report.OverallScore)
}

func TestSynthesizeImprovementPriorityIsThreeLowest(t *testing.T) {
	fused := []Metric{
		{Dimension: DimensionClarity, Score: 1.0},
		{Dimension: DimensionGrammar, Score: 4.8},
		{Dimension: DimensionStyle, Score: 2.0},
		{Dimension: DimensionTone, Score: 3.0},
		{Dimension: DimensionAccuracy, Score: 0.5},
	}
	report := synthesize(BasicMetrics{}, fused, nil)
	require.Len(t, report.ImprovementPriority, 3)
	assert.Contains(t, report.ImprovementPriority, DimensionAccuracy)
	assert.Contains(t, report.ImprovementPriority, DimensionClarity)
	assert.Contains(t, report.ImprovementPriority, DimensionStyle)
}
