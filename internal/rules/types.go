package rules

import (
	"regexp"
	"strings"

	"github.com/codewithboateng/codesafe/internal/model"
)

// Rule is a single named detection plus its fixed severity and remediation.
type Rule struct {
	ID       string
	Severity model.Severity
	Detect   Detector
	// Message is used verbatim unless Describe is set, in which case Describe
	// receives the text of the triggering line.
	Message     string
	Describe    func(match string) string
	Improvement string
}

func (r Rule) message(match string) string {
	if r.Describe != nil {
		return r.Describe(match)
	}
	return r.Message
}

type Kind string

const (
	KindContains Kind = "contains"
	KindEachLine Kind = "each_line"
	KindRegex    Kind = "regex"
	KindAnyOf    Kind = "any_of"
)

// FallbackLine is reported when whole-content matching succeeds but no single
// line matches on its own, e.g. a regex whose character class spans "\n".
const FallbackLine = 1

// Detector locates occurrences of a rule in a file. Build one with Contains,
// EachLine, Regex or AnyOf.
type Detector struct {
	Kind    Kind
	Tokens  []string
	Pattern *regexp.Regexp
}

func Contains(token string) Detector { return Detector{Kind: KindContains, Tokens: []string{token}} }

func EachLine(token string) Detector { return Detector{Kind: KindEachLine, Tokens: []string{token}} }

func Regex(re *regexp.Regexp) Detector { return Detector{Kind: KindRegex, Pattern: re} }

func AnyOf(tokens ...string) Detector { return Detector{Kind: KindAnyOf, Tokens: tokens} }

// Lines returns the 1-based line numbers the detector reports, ascending.
// Every kind except EachLine reports at most one line.
func (d Detector) Lines(content string, lines []string) []int {
	switch d.Kind {
	case KindContains, KindAnyOf:
		if !d.containsAny(content) {
			return nil
		}
		return []int{firstLine(lines, d.containsAny)}
	case KindEachLine:
		if len(d.Tokens) == 0 {
			return nil
		}
		var out []int
		for i, l := range lines {
			if strings.Contains(l, d.Tokens[0]) {
				out = append(out, i+1)
			}
		}
		return out
	case KindRegex:
		if d.Pattern == nil || !d.Pattern.MatchString(content) {
			return nil
		}
		return []int{firstLine(lines, d.Pattern.MatchString)}
	default:
		return nil
	}
}

func (d Detector) containsAny(s string) bool {
	for _, t := range d.Tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func firstLine(lines []string, match func(string) bool) int {
	for i, l := range lines {
		if match(l) {
			return i + 1
		}
	}
	return FallbackLine
}

// String renders the detector for listings, e.g. `contains "eval("`.
func (d Detector) String() string {
	switch d.Kind {
	case KindRegex:
		if d.Pattern == nil {
			return string(d.Kind)
		}
		return string(d.Kind) + " /" + d.Pattern.String() + "/"
	default:
		q := make([]string, len(d.Tokens))
		for i, t := range d.Tokens {
			q[i] = `"` + t + `"`
		}
		return string(d.Kind) + " " + strings.Join(q, " | ")
	}
}
