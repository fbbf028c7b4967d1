package deviation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

func TestRiskLowWhenNoAlerts(t *testing.T) {
	level, score := assessRisk(nil)
	assert.Equal(t, RiskLow, level)
	assert.Equal(t, 0.0, score)
}

func TestRiskCriticalWhenAnyCriticalAlert(t *testing.T) {
	alerts := []Alert{{Severity: SeverityMinor}, {Severity: SeverityCritical}}
	level, _ := assessRisk(alerts)
	assert.Equal(t, RiskCritical, level)
}

func TestRiskMediumAtThreeModerateAlerts(t *testing.T) {
	alerts := []Alert{{Severity: SeverityModerate}, {Severity: SeverityModerate}, {Severity: SeverityModerate}}
	level, _ := assessRisk(alerts)
	assert.Equal(t, RiskMedium, level)
}

func TestRiskLowBelowThreeModerateAlerts(t *testing.T) {
	alerts := []Alert{{Severity: SeverityModerate}, {Severity: SeverityModerate}}
	level, _ := assessRisk(alerts)
	assert.Equal(t, RiskLow, level)
}

func TestScanPatternsDetectsScopeCreep(t *testing.T) {
	alerts := scanPatterns("We also expanded the scope to cover more than requested.")
	require.NotEmpty(t, alerts)
	assert.Equal(t, AlertScopeCreep, alerts[0].Type)
	assert.Equal(t, SeverityModerate, alerts[0].Severity)
}

func TestCheckComplianceDefaultsOnBackendFailure(t *testing.T) {
	failing := backend.NewMockBackend("")
	failing.Responder = func(backend.GenerateRequest) (backend.GenerateResponse, error) {
		return backend.GenerateResponse{}, assertErr{}
	}
	result := checkCompliance(context.Background(), failing, "content", Objective{ID: "o1"})
	assert.True(t, result.Compliant)
	assert.Equal(t, 0.5, result.ComplianceScore)
}

type assertErr struct{}

func (assertErr) Error() string { return "backend unavailable" }

func TestCheckerComposesAlertsAndCompliance(t *testing.T) {
	mock := backend.NewMockBackend("true|0.9|none|none")
	c := New(mock, nil)
	objectives := []Objective{{ID: "o1", Description: "stay on topic"}}

	report := c.Check(context.Background(), "This is plain compliant content.", objectives)
	require.Len(t, report.Compliance, 1)
	assert.Equal(t, 0.9, report.Compliance[0].ComplianceScore)
	assert.Equal(t, RiskLow, report.OverallRiskLevel)
}

func TestMeanComplianceScoreDefaultsToOneWhenEmpty(t *testing.T) {
	assert.Equal(t, 1.0, meanComplianceScore(nil))
}

func TestDedupeStringsRemovesCaseInsensitiveDuplicates(t *testing.T) {
	out := dedupeStrings([]string{"Fix Tone", "fix tone", "Add Sources"})
	assert.Len(t, out, 2)
}
