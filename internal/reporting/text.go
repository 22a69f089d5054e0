package reporting

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/codewithboateng/codesafe/internal/model"
)

var (
	styleHigh        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	styleMedium      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	styleLow         = lipgloss.NewStyle().Faint(true)
	styleFile        = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	styleImprovement = lipgloss.NewStyle().Faint(true)
)

func styleSeverity(sev model.Severity, color bool) string {
	label := fmt.Sprintf("%-6s", strings.ToUpper(string(sev)))
	if !color {
		return label
	}
	switch sev {
	case model.SeverityHigh:
		return styleHigh.Render(label)
	case model.SeverityMedium:
		return styleMedium.Render(label)
	case model.SeverityLow:
		return styleLow.Render(label)
	default:
		return label
	}
}

// FormatText renders findings for a terminal, high severity first. color
// enables lipgloss styling.
func FormatText(fileName string, findings []model.Finding, color bool) string {
	var b strings.Builder
	name := fileName
	if color {
		name = styleFile.Render(fileName)
	}
	if len(findings) == 0 {
		fmt.Fprintf(&b, "%s: no vulnerabilities found.\n", name)
		return b.String()
	}

	c := model.Counts(findings)
	fmt.Fprintf(&b, "%s: %d finding(s) (%d high, %d medium, %d low)\n\n",
		name, len(findings), c[model.SeverityHigh], c[model.SeverityMedium], c[model.SeverityLow])

	for _, f := range model.SortBySeverity(findings) {
		fmt.Fprintf(&b, "  %s  line %-4d %s  %s\n", styleSeverity(f.Severity, color), f.Line, f.Rule, f.Message)
		if imp := strings.TrimSpace(f.Improvement); imp != "" {
			if len(imp) > 200 {
				imp = imp[:200] + "..."
			}
			imp = "→ " + imp
			if color {
				imp = styleImprovement.Render(imp)
			}
			fmt.Fprintf(&b, "          %s\n", imp)
		}
	}
	return b.String()
}
