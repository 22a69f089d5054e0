package rules

import (
	"go/build"
	"os"
	"strings"
	"testing"
)

// Every source file of the package must build on the host. A name such as
// rules_js.go would be silently restricted to GOOS=js.
func TestPackageFilesMatchHostBuild(t *testing.T) {
	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		ok, err := build.Default.MatchFile(".", name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !ok {
			t.Errorf("%s is excluded from the %s/%s build by its file name", name, build.Default.GOOS, build.Default.GOARCH)
		}
	}
}

func TestBuiltinProfilesPresent(t *testing.T) {
	for _, ext := range []string{"js", "ts", "jsx", "tsx", "py", "java"} {
		if !defaultScanner.Supports(ext) {
			t.Errorf("no built-in profile for %q", ext)
		}
	}
	if got := len(defaultScanner.Rules("js")); got != 6 {
		t.Errorf("js profile has %d rules, want 6", got)
	}
}
