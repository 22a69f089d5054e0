package rulesdsl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codewithboateng/codesafe/internal/rules"
)

const samplePack = `
rules:
  - id: no-document-write
    languages: [js, .TS]
    severity: HIGH
    kind: contains
    token: document.write(
    message: document.write can inject markup
    improvement: Build nodes with createElement.
  - id: no-aws-key
    languages: [py, js]
    severity: medium
    kind: regex
    pattern: 'aws_secret_access_key\s*='
    ignore_case: true
    message: AWS secret in source
  - id: no-print
    languages: [py]
    severity: low
    kind: each_line
    token: "print("
    message: print statement
  - id: no-xxx
    languages: [java]
    severity: low
    kind: any_of
    tokens: [XXX, HACK]
    message: marker comment
`

func TestParse_CompilesEveryKind(t *testing.T) {
	pack, err := Parse([]byte(samplePack))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(pack["js"]) != 2 || len(pack["ts"]) != 1 || len(pack["py"]) != 2 || len(pack["java"]) != 1 {
		t.Fatalf("unexpected pack layout: %v", pack)
	}
	if pack["js"][0].ID != "no-document-write" || pack["js"][1].ID != "no-aws-key" {
		t.Fatalf("declaration order lost: %s, %s", pack["js"][0].ID, pack["js"][1].ID)
	}

	s := rules.New(rules.WithPack(pack))
	fs := s.Scan("x = 1\nAWS_SECRET_ACCESS_KEY = 'k'\nprint(x)\nprint(y)\n", "py")
	var got []string
	for _, f := range fs {
		got = append(got, f.Rule)
	}
	if strings.Join(got, ",") != "no-aws-key,no-print,no-print" {
		t.Fatalf("rules = %v", got)
	}
	if fs[0].Line != 2 || fs[2].Line != 4 {
		t.Fatalf("lines = %d, %d", fs[0].Line, fs[2].Line)
	}

	fs = s.Scan("// HACK\n", "java")
	if len(fs) != 1 || fs[0].Rule != "no-xxx" {
		t.Fatalf("java findings = %+v", fs)
	}
}

func TestParse_MessageTemplate(t *testing.T) {
	pack, err := Parse([]byte(`
rules:
  - id: no-assert
    languages: [py]
    severity: low
    kind: each_line
    token: "assert "
    message: "assert used: {match}"
  - id: no-pdb
    languages: [py]
    severity: medium
    kind: contains
    token: pdb.set_trace
    message: debugger left in
`))
	if err != nil {
		t.Fatal(err)
	}
	if pack["py"][0].Describe == nil || pack["py"][1].Describe != nil {
		t.Fatalf("Describe set only for templated messages")
	}
	fs := rules.New(rules.WithPack(pack)).Scan("x = 1\n    assert x > 0  \nimport pdb; pdb.set_trace()\n", "py")
	if len(fs) != 2 {
		t.Fatalf("findings = %+v", fs)
	}
	if fs[0].Message != "assert used: assert x > 0" || fs[0].Line != 2 {
		t.Fatalf("templated finding = %+v", fs[0])
	}
	if fs[1].Message != "debugger left in" {
		t.Fatalf("plain message = %q", fs[1].Message)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"missing message", "rules: [{id: a, languages: [js], severity: low, kind: contains, token: x}]", "missing required"},
		{"bad severity", "rules: [{id: a, languages: [js], severity: urgent, kind: contains, token: x, message: m}]", "unknown severity"},
		{"bad kind", "rules: [{id: a, languages: [js], severity: low, kind: ast, token: x, message: m}]", "unsupported kind"},
		{"bad regex", "rules: [{id: a, languages: [js], severity: low, kind: regex, pattern: '(', message: m}]", "pattern"},
		{"no languages", "rules: [{id: a, severity: low, kind: contains, token: x, message: m}]", "languages"},
		{"duplicate", "rules: [{id: a, languages: [js], severity: low, kind: contains, token: x, message: m}, {id: A, languages: [py], severity: low, kind: contains, token: y, message: m}]", "duplicate"},
		{"not yaml", "rules: [", "parse yaml"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want substring %q", err, tc.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "pack.yaml")
	if err := os.WriteFile(p, []byte(samplePack), 0o644); err != nil {
		t.Fatal(err)
	}
	pack, err := LoadFile(p)
	if err != nil || len(pack) == 0 {
		t.Fatalf("LoadFile: %v %v", pack, err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
