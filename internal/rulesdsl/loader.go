package rulesdsl

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/codewithboateng/codesafe/internal/model"
	"github.com/codewithboateng/codesafe/internal/rules"
)

// matchPlaceholder in a message is replaced by the trimmed triggering line.
const matchPlaceholder = "{match}"

type dslPack struct {
	Rules []dslRule `yaml:"rules"`
}

type dslRule struct {
	ID          string   `yaml:"id"`
	Languages   []string `yaml:"languages"` // file extensions, e.g. [js, ts]
	Severity    string   `yaml:"severity"`  // high|medium|low
	Kind        string   `yaml:"kind"`      // contains|each_line|regex|any_of
	Token       string   `yaml:"token"`
	Tokens      []string `yaml:"tokens"`
	Pattern     string   `yaml:"pattern"`
	IgnoreCase  bool     `yaml:"ignore_case"`
	Message     string   `yaml:"message"` // may contain {match}
	Improvement string   `yaml:"improvement"`
}

// LoadFile reads a YAML rule pack from disk.
func LoadFile(path string) (rules.Pack, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules pack: %w", err)
	}
	return Parse(b)
}

// Parse compiles a YAML rule pack. Rules keep their declaration order within
// each extension.
func Parse(b []byte) (rules.Pack, error) {
	var pack dslPack
	if err := yaml.Unmarshal(b, &pack); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out := rules.Pack{}
	seen := map[string]bool{}
	for _, r := range pack.Rules {
		cr, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.ID, err)
		}
		key := strings.ToLower(r.ID)
		if seen[key] {
			return nil, fmt.Errorf("duplicate rule id %q", r.ID)
		}
		seen[key] = true
		for _, lang := range r.Languages {
			ext := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(lang), "."))
			if ext == "" {
				continue
			}
			out[ext] = append(out[ext], cr)
		}
	}
	return out, nil
}

func compile(r dslRule) (rules.Rule, error) {
	if r.ID == "" || r.Kind == "" || r.Severity == "" || r.Message == "" {
		return rules.Rule{}, fmt.Errorf("missing required fields (id/kind/severity/message)")
	}
	if len(r.Languages) == 0 {
		return rules.Rule{}, fmt.Errorf("languages must list at least one extension")
	}
	sev, err := model.ParseSeverity(r.Severity)
	if err != nil {
		return rules.Rule{}, err
	}

	var det rules.Detector
	switch rules.Kind(strings.ToLower(r.Kind)) {
	case rules.KindContains:
		if r.Token == "" {
			return rules.Rule{}, fmt.Errorf("kind contains needs token")
		}
		det = rules.Contains(r.Token)
	case rules.KindEachLine:
		if r.Token == "" {
			return rules.Rule{}, fmt.Errorf("kind each_line needs token")
		}
		det = rules.EachLine(r.Token)
	case rules.KindAnyOf:
		var toks []string
		for _, t := range r.Tokens {
			if t != "" {
				toks = append(toks, t)
			}
		}
		if len(toks) == 0 {
			return rules.Rule{}, fmt.Errorf("kind any_of needs tokens")
		}
		det = rules.AnyOf(toks...)
	case rules.KindRegex:
		if r.Pattern == "" {
			return rules.Rule{}, fmt.Errorf("kind regex needs pattern")
		}
		p := r.Pattern
		if r.IgnoreCase {
			p = "(?i)" + p
		}
		re, err := regexp.Compile(p)
		if err != nil {
			return rules.Rule{}, fmt.Errorf("pattern: %w", err)
		}
		det = rules.Regex(re)
	default:
		return rules.Rule{}, fmt.Errorf("unsupported kind %q", r.Kind)
	}

	rule := rules.Rule{
		ID:          r.ID,
		Severity:    sev,
		Detect:      det,
		Message:     r.Message,
		Improvement: r.Improvement,
	}
	if strings.Contains(r.Message, matchPlaceholder) {
		tmpl := r.Message
		rule.Describe = func(match string) string {
			return strings.ReplaceAll(tmpl, matchPlaceholder, strings.TrimSpace(match))
		}
	}
	return rule, nil
}
