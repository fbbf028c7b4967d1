package deviation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kimhons/ai-writing-platform-sub000/pkg/backend"
)

const semanticContentLimit = 2000
const maxSemanticAlerts = 8

// scanSemantic implements spec §4.6 step 2: a single backend call carrying
// the objective set and up to 2000 characters of content, returning at most
// 8 deviation items. On backend failure it returns no alerts; the pattern
// scan's findings still stand.
func scanSemantic(ctx context.Context, gen backend.Backend, objectives []Objective, content string) []Alert {
	if gen == nil {
		return nil
	}

	truncated := content
	if len(truncated) > semanticContentLimit {
		truncated = truncated[:semanticContentLimit]
	}

	resp, err := gen.Generate(ctx, backend.GenerateRequest{Prompt: buildSemanticPrompt(objectives, truncated), MaxTokens: 600})
	if err != nil {
		return nil
	}

	return parseSemanticAlerts(resp.Content)
}

func buildSemanticPrompt(objectives []Objective, content string) string {
	var b strings.Builder
	b.WriteString("Given these project objectives:\n")
	for _, o := range objectives {
		b.WriteString(fmt.Sprintf("- [%s] %s (priority %s)\n", o.ID, o.Description, o.Priority))
	}
	b.WriteString("\nIdentify deviations in the following content. Reply with one line per ")
	b.WriteString("deviation as type|objective_id|evidence|confidence, at most 8 lines.\n\n")
	b.WriteString(content)
	return b.String()
}

// parseSemanticAlerts parses "type|objective_id|evidence|confidence" lines.
func parseSemanticAlerts(text string) []Alert {
	var alerts []Alert
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "|", 4)
		if len(fields) != 4 {
			continue
		}

		alertType := AlertType(strings.ToLower(strings.TrimSpace(fields[0])))
		severity, known := severityByAlertType[alertType]
		if !known {
			continue
		}

		confidence, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			confidence = 0.5
		}

		alerts = append(alerts, Alert{
			Type:                alertType,
			Severity:            severity,
			AlertLevel:          alertLevelBySeverity[severity],
			AffectedObjectiveID: strings.TrimSpace(fields[1]),
			Evidence:            []string{strings.TrimSpace(fields[2])},
			Confidence:          clamp01(confidence),
			Resolution:          ResolutionUnresolved,
		})

		if len(alerts) >= maxSemanticAlerts {
			break
		}
	}
	return alerts
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
