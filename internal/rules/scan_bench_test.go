package rules

import (
	"strings"
	"testing"
)

func BenchmarkScan_JS(b *testing.B) {
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteString("const v = compute(i); console.log(v);\n")
	}
	sb.WriteString("const password = \"hunter2\"\n// TODO tidy\n")
	src := sb.String()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if len(Scan(src, "js")) == 0 {
			b.Fatal("expected findings")
		}
	}
}
