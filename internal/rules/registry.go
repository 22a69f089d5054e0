package rules

import (
	"sort"
	"strings"

	"github.com/codewithboateng/codesafe/internal/model"
)

// builtinProfiles maps a file extension to its ordered rule catalog.
var builtinProfiles = map[string][]Rule{
	"js":   javascriptRules,
	"ts":   javascriptRules,
	"jsx":  javascriptRules,
	"tsx":  javascriptRules,
	"py":   pythonRules,
	"java": javaRules,
}

// Scanner holds the rule catalogs it was built with. It is not modified after
// New returns, so one value may be shared across goroutines.
type Scanner struct {
	profiles map[string][]Rule
}

type Option func(*builder)

type builder struct {
	disabled map[string]bool
	extra    []Pack
}

// Pack is a set of additional rules keyed by file extension, in declaration
// order. Pack rules run after the built-in rules of the same extension.
type Pack map[string][]Rule

// WithDisabled drops rules by ID (case-insensitive) from every profile.
func WithDisabled(ids ...string) Option {
	return func(b *builder) {
		for _, id := range ids {
			if id = strings.TrimSpace(id); id != "" {
				b.disabled[strings.ToLower(id)] = true
			}
		}
	}
}

func WithPack(p Pack) Option {
	return func(b *builder) { b.extra = append(b.extra, p) }
}

func New(opts ...Option) *Scanner {
	b := &builder{disabled: map[string]bool{}}
	for _, o := range opts {
		o(b)
	}

	profiles := make(map[string][]Rule, len(builtinProfiles))
	add := func(ext string, rs []Rule) {
		for _, r := range rs {
			if b.disabled[strings.ToLower(r.ID)] {
				continue
			}
			profiles[ext] = append(profiles[ext], r)
		}
	}
	for ext, rs := range builtinProfiles {
		add(ext, rs)
	}
	for _, p := range b.extra {
		for ext, rs := range p {
			add(ext, rs)
		}
	}
	return &Scanner{profiles: profiles}
}

var defaultScanner = New()

// Scan runs the built-in catalogs. See Scanner.Scan.
func Scan(content, ext string) []model.Finding {
	return defaultScanner.Scan(content, ext)
}

// Scan reports findings for content written in the language named by ext
// (lowercase, no dot). Findings follow the profile's rule order, and a rule
// that matches several lines reports them in ascending order. Unknown
// extensions produce an empty result.
func (s *Scanner) Scan(content, ext string) []model.Finding {
	out := []model.Finding{}
	rs := s.profiles[ext]
	if len(rs) == 0 || content == "" {
		return out
	}
	lines := strings.Split(content, "\n")
	for _, r := range rs {
		for _, n := range r.Detect.Lines(content, lines) {
			match := ""
			if n >= 1 && n <= len(lines) {
				match = lines[n-1]
			}
			out = append(out, model.Finding{
				Severity:    r.Severity,
				Message:     r.message(match),
				Line:        n,
				Rule:        r.ID,
				Improvement: r.Improvement,
			})
		}
	}
	return out
}

// Rules returns a copy of the profile for ext, or nil when unsupported.
func (s *Scanner) Rules(ext string) []Rule {
	rs := s.profiles[ext]
	if len(rs) == 0 {
		return nil
	}
	out := make([]Rule, len(rs))
	copy(out, rs)
	return out
}

// Languages lists the supported extensions in sorted order.
func (s *Scanner) Languages() []string {
	out := make([]string, 0, len(s.profiles))
	for ext := range s.profiles {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (s *Scanner) Supports(ext string) bool { return len(s.profiles[ext]) > 0 }

// Get returns a rule by ID from any profile.
func (s *Scanner) Get(id string) (Rule, bool) {
	for _, ext := range s.Languages() {
		for _, r := range s.profiles[ext] {
			if strings.EqualFold(r.ID, strings.TrimSpace(id)) {
				return r, true
			}
		}
	}
	return Rule{}, false
}
