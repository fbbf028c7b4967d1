// Package deviation implements the Deviation Monitor (spec §4.6): compares
// produced content against a project's registered objectives and emits
// compliance scores plus deviation alerts.
package deviation

import "time"

// ObjectiveCategory is the closed category enum (spec §3).
type ObjectiveCategory string

const (
	CategoryContent      ObjectiveCategory = "content"
	CategoryStyle        ObjectiveCategory = "style"
	CategoryStructure    ObjectiveCategory = "structure"
	CategoryTone         ObjectiveCategory = "tone"
	CategoryAccuracy     ObjectiveCategory = "accuracy"
	CategoryClarity      ObjectiveCategory = "clarity"
	CategoryEngagement   ObjectiveCategory = "engagement"
	CategoryCompleteness ObjectiveCategory = "completeness"
	CategoryOther        ObjectiveCategory = "other"
)

// Priority is an objective's priority (spec §3).
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Objective is a ProjectObjective (spec §3).
type Objective struct {
	ID                 string
	Description        string
	Category           ObjectiveCategory
	Priority           Priority
	MeasurableCriteria []string
	Constraints        []string
}

// AlertType is the closed DeviationAlert type enum (spec §3).
type AlertType string

const (
	AlertScopeCreep           AlertType = "scope_creep"
	AlertGoalMisalignment     AlertType = "goal_misalignment"
	AlertToneDeviation        AlertType = "tone_deviation"
	AlertStyleInconsistency   AlertType = "style_inconsistency"
	AlertContentDrift         AlertType = "content_drift"
	AlertStructuralDeviation  AlertType = "structural_deviation"
	AlertRequirementViolation AlertType = "requirement_violation"
	AlertPermissionOverreach  AlertType = "permission_overreach"
)

// Severity is a DeviationAlert's severity (spec §3).
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// severityWeight implements spec §4.6 step 4's risk-score weighting.
var severityWeight = map[Severity]float64{
	SeverityCritical: 1.0,
	SeverityMajor:     0.7,
	SeverityModerate:  0.4,
	SeverityMinor:     0.1,
}

// severityByAlertType is spec §4.6 step 1's fixed severity table.
var severityByAlertType = map[AlertType]Severity{
	AlertScopeCreep:           SeverityModerate,
	AlertGoalMisalignment:     SeverityMajor,
	AlertToneDeviation:        SeverityModerate,
	AlertStyleInconsistency:   SeverityMinor,
	AlertContentDrift:         SeverityModerate,
	AlertStructuralDeviation:  SeverityMajor,
	AlertRequirementViolation: SeverityCritical,
	AlertPermissionOverreach:  SeverityCritical,
}

// AlertLevel is a DeviationAlert's alert_level (spec §3).
type AlertLevel string

const (
	AlertLevelInfo     AlertLevel = "info"
	AlertLevelWarning  AlertLevel = "warning"
	AlertLevelError    AlertLevel = "error"
	AlertLevelCritical AlertLevel = "critical"
)

// alertLevelBySeverity maps severity to the alert's reporting level.
var alertLevelBySeverity = map[Severity]AlertLevel{
	SeverityMinor:    AlertLevelInfo,
	SeverityModerate: AlertLevelWarning,
	SeverityMajor:    AlertLevelError,
	SeverityCritical: AlertLevelCritical,
}

// Resolution is a DeviationAlert's lifecycle state (spec §4.6). Resolution
// is external; the monitor never mutates it.
type Resolution string

const (
	ResolutionUnresolved Resolution = "unresolved"
	ResolutionResolved   Resolution = "resolved"
)

// Alert is a DeviationAlert (spec §3).
type Alert struct {
	ID                 string
	Type               AlertType
	Severity           Severity
	AlertLevel         AlertLevel
	AffectedObjectiveID string
	Evidence           []string
	SuggestedCorrection string
	Confidence         float64
	Resolution         Resolution
	CreatedAt          time.Time
}

// RiskLevel is the closed overall_risk_level enum (spec §4.6 step 4).
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ComplianceResult is one objective's compliance-check outcome (spec §4.6
// step 3).
type ComplianceResult struct {
	ObjectiveID     string
	Compliant       bool
	ComplianceScore float64
	Violations      []string
	Recommendations []string
	Evidence        []string
}

// Report is the Deviation Monitor's output (spec §4.6 step 5).
type Report struct {
	Alerts                []Alert
	Compliance            []ComplianceResult
	OverallRiskLevel      RiskLevel
	RiskScore             float64
	OverallComplianceScore float64
	CorrectiveActions     []string
}
