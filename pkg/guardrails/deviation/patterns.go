package deviation

import (
	"regexp"
)

// patternFamily pairs an alert type with the regexes that detect it (spec
// §4.6 step 1). Matches use the fixed severityByAlertType table, not a
// per-family override, so the family only needs to supply detection.
type patternFamily struct {
	alertType AlertType
	regexes   []*regexp.Regexp
}

var patternFamilies = []patternFamily{
	{
		alertType: AlertScopeCreep,
		regexes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(also|additionally|while we're at it|might as well|let's also)\b`),
			regexp.MustCompile(`(?i)\b(expand(ed)? (the )?scope|beyond (the )?(original )?request)\b`),
		},
	},
	{
		alertType: AlertGoalMisalignment,
		regexes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(unrelated to|does not address|off[- ]?topic|instead of)\b`),
		},
	},
	{
		alertType: AlertToneDeviation,
		regexes: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(lol|yeah right|gonna|kinda sus|no way)\b`),
		},
	},
}

// scanPatterns applies every family's regex set to content and returns one
// DeviationAlert per match, with severity from the fixed table (spec §4.6
// step 1).
func scanPatterns(content string) []Alert {
	var alerts []Alert
	for _, fam := range patternFamilies {
		for _, re := range fam.regexes {
			matches := re.FindAllString(content, -1)
			for _, m := range matches {
				severity := severityByAlertType[fam.alertType]
				alerts = append(alerts, Alert{
					Type:       fam.alertType,
					Severity:   severity,
					AlertLevel: alertLevelBySeverity[severity],
					Evidence:   []string{m},
					Confidence: 0.6,
					Resolution: ResolutionUnresolved,
				})
			}
		}
	}
	return alerts
}
