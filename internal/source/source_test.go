package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtOf(t *testing.T) {
	tests := map[string]string{
		"app.js":             "js",
		"Component.TSX":      "tsx",
		"dir/archive.tar.py": "py",
		"Makefile":           "makefile",
		"/tmp/x/Main.java":   "java",
		".env":               "env",
	}
	for in, want := range tests {
		if got := ExtOf(in); got != want {
			t.Errorf("ExtOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoad_SizeLimit(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.js")
	if err := os.WriteFile(big, []byte(strings.Repeat("a", MaxFileBytes+1)), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(big); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	small := filepath.Join(dir, "ok.py")
	if err := os.WriteFile(small, []byte("exec(x)"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := Load(small)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Name != "ok.py" || f.Ext != "py" || f.Content != "exec(x)" {
		t.Fatalf("unexpected file: %+v", f)
	}
}

func TestWalk_FiltersAndSkips(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("src/a.js", "eval(x)")
	write("src/b.txt", "notes")
	write("node_modules/lib/c.js", "eval(y)")
	write("bin/d.py", "\x00\x01binary")

	keep := func(ext string) bool { return ext == "js" || ext == "py" }
	files, diags := Walk(dir, keep)
	if len(files) != 1 || files[0].Name != "a.js" {
		t.Fatalf("files = %+v", files)
	}
	if len(diags.Warnings) != 1 || !strings.Contains(diags.Warnings[0], "binary") {
		t.Fatalf("warnings = %v", diags.Warnings)
	}

	_, diags = Walk(t.TempDir(), keep)
	if len(diags.Warnings) == 0 {
		t.Fatalf("expected a warning for an empty tree")
	}
}
