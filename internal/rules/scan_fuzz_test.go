package rules

import "testing"

// Scan must never panic and every reported line must be inside the file.
func FuzzScanNoPanic(f *testing.F) {
	seeds := []string{
		"eval(x)\n",
		"password = \"a\nb\"",
		"\n\n\n",
		"System.out.println(x == null)",
		"\x00\xff garbage",
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, content string) {
		lines := 1
		for i := 0; i < len(content); i++ {
			if content[i] == '\n' {
				lines++
			}
		}
		for _, ext := range []string{"js", "py", "java"} {
			for _, fd := range Scan(content, ext) {
				if fd.Line < 1 || fd.Line > lines {
					t.Fatalf("%s: line %d outside 1..%d", ext, fd.Line, lines)
				}
			}
		}
	})
}
