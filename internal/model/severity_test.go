package model

import (
	"reflect"
	"testing"
)

func sample() []Finding {
	return []Finding{
		{Severity: SeverityLow, Rule: "no-console", Line: 1},
		{Severity: SeverityHigh, Rule: "no-eval", Line: 2},
		{Severity: SeverityMedium, Rule: "no-inner-html", Line: 3},
		{Severity: SeverityHigh, Rule: "no-dangerous-html", Line: 4},
		{Severity: SeverityLow, Rule: "no-console", Line: 5},
	}
}

func TestFilter_HighOnlyKeepsOrder(t *testing.T) {
	got := Filter(sample(), SeveritySet{SeverityHigh: true})
	if len(got) != 2 || got[0].Rule != "no-eval" || got[1].Rule != "no-dangerous-html" {
		t.Fatalf("unexpected: %+v", got)
	}
}

func TestFilter_EmptySetYieldsEmpty(t *testing.T) {
	if got := Filter(sample(), SeveritySet{}); len(got) != 0 {
		t.Fatalf("expected empty, got %+v", got)
	}
	if got := Filter(sample(), nil); len(got) != 0 {
		t.Fatalf("nil set must also yield empty, got %+v", got)
	}
}

func TestFilter_AllIsIdentity(t *testing.T) {
	in := sample()
	if got := Filter(in, AllSeverities()); !reflect.DeepEqual(got, in) {
		t.Fatalf("expected identity, got %+v", got)
	}
}

func TestParseSeveritySet(t *testing.T) {
	set, err := ParseSeveritySet(" High, low ,")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !set[SeverityHigh] || !set[SeverityLow] || set[SeverityMedium] {
		t.Fatalf("unexpected set: %v", set)
	}
	all, _ := ParseSeveritySet("")
	if !reflect.DeepEqual(all, AllSeverities()) {
		t.Fatalf("empty string should be the default set, got %v", all)
	}
	if _, err := ParseSeveritySet("high,critical"); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
}

func TestSortBySeverity_StableCopy(t *testing.T) {
	in := sample()
	got := SortBySeverity(in)
	var lines []int
	for _, f := range got {
		lines = append(lines, f.Line)
	}
	if !reflect.DeepEqual(lines, []int{2, 4, 3, 1, 5}) {
		t.Fatalf("lines = %v", lines)
	}
	if in[0].Line != 1 {
		t.Fatalf("input must not be reordered")
	}
}

func TestCounts(t *testing.T) {
	c := Counts(sample())
	if c[SeverityHigh] != 2 || c[SeverityMedium] != 1 || c[SeverityLow] != 2 {
		t.Fatalf("counts = %v", c)
	}
}
