package model

import (
	"fmt"
	"sort"
	"strings"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities high > medium > low. Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) Valid() bool { return s.Rank() > 0 }

func ParseSeverity(v string) (Severity, error) {
	s := Severity(strings.ToLower(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown severity %q", v)
	}
	return s, nil
}

// SeveritySet is the set of severities a consumer wants to see.
type SeveritySet map[Severity]bool

func AllSeverities() SeveritySet {
	return SeveritySet{SeverityHigh: true, SeverityMedium: true, SeverityLow: true}
}

// ParseSeveritySet reads a comma-separated list such as "high,medium".
// An empty string yields the default set (all severities).
func ParseSeveritySet(csv string) (SeveritySet, error) {
	if strings.TrimSpace(csv) == "" {
		return AllSeverities(), nil
	}
	set := SeveritySet{}
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		s, err := ParseSeverity(part)
		if err != nil {
			return nil, err
		}
		set[s] = true
	}
	return set, nil
}

// Filter returns the findings whose severity is in enabled, in their original
// order. An empty set yields an empty result.
func Filter(findings []Finding, enabled SeveritySet) []Finding {
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if enabled[f.Severity] {
			out = append(out, f)
		}
	}
	return out
}

// SortBySeverity returns a copy ordered high first; ties keep scan order.
func SortBySeverity(findings []Finding) []Finding {
	out := make([]Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Rank() > out[j].Severity.Rank()
	})
	return out
}

// Counts tallies findings per severity.
func Counts(findings []Finding) map[Severity]int {
	c := map[Severity]int{}
	for _, f := range findings {
		c[f.Severity]++
	}
	return c
}
