package rules

import (
	"strings"

	"github.com/codewithboateng/codesafe/internal/model"
)

// ApplySuppressions filters out findings that match any active suppression.
// Returns (kept, suppressedCount)
func ApplySuppressions(in []model.Finding, fileName string, sups []model.Suppression) ([]model.Finding, int) {
	if len(sups) == 0 || len(in) == 0 {
		return in, 0
	}
	out := make([]model.Finding, 0, len(in))
	suppressed := 0
nextFinding:
	for _, f := range in {
		for _, s := range sups {
			if !eqCI(f.Rule, s.Rule) {
				continue
			}
			if s.FileName != "" && !eqCI(fileName, s.FileName) {
				continue
			}
			if s.PatternSub != "" && !strings.Contains(strings.ToUpper(f.Message), strings.ToUpper(s.PatternSub)) {
				continue
			}
			suppressed++
			continue nextFinding
		}
		out = append(out, f)
	}
	return out, suppressed
}

func eqCI(a, b string) bool { return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) }
