package reporting

import (
	"fmt"
	"html"
	"os"
	"path/filepath"

	"github.com/codewithboateng/codesafe/internal/model"
)

func WriteHTML(outDir string, sc *model.Scan) (string, error) {
	path := filepath.Join(outDir, sc.ID+".html")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	counts := model.Counts(sc.Findings)

	fmt.Fprintf(f, "<!doctype html><html><head><meta charset='utf-8'><title>%s</title>", html.EscapeString(sc.FileName))
	fmt.Fprint(f, "<style>body{font-family:system-ui,Arial,sans-serif;padding:20px;line-height:1.4} table{border-collapse:collapse;margin:8px 0} td,th{border:1px solid #ddd;padding:6px} h1,h2{margin:6px 0 4px} .dim{color:#666} .mono{font-family:ui-monospace,Menlo,Consolas,monospace} .high{color:#c2410c;font-weight:bold} .medium{color:#b45309} .low{color:#1d4ed8}</style>")
	fmt.Fprint(f, "</head><body>")

	fmt.Fprintf(f, "<h1>codesafe report – <span class='mono'>%s</span></h1>", html.EscapeString(sc.FileName))
	fmt.Fprintf(f, "<p class='dim'>Scan %s &nbsp; Language: %s &nbsp; %s</p>",
		html.EscapeString(sc.ID), html.EscapeString(sc.Language), sc.StartedAt.UTC().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(f, "<p>Findings: %d &nbsp; High: %d &nbsp; Medium: %d &nbsp; Low: %d</p>",
		len(sc.Findings), counts[model.SeverityHigh], counts[model.SeverityMedium], counts[model.SeverityLow])

	if len(sc.Findings) == 0 {
		fmt.Fprint(f, "<h2>Findings</h2><p class='dim'>No vulnerabilities found.</p></body></html>")
		return path, nil
	}

	fmt.Fprint(f, "<h2>Findings</h2><table><tr><th>Severity</th><th>Line</th><th>Rule</th><th>Message</th><th>Improvement</th></tr>")
	for _, fd := range model.SortBySeverity(sc.Findings) {
		sev := html.EscapeString(string(fd.Severity))
		fmt.Fprintf(f, "<tr><td class='%s'>%s</td><td>%d</td><td class='mono'>%s</td><td>%s</td><td>%s</td></tr>",
			sev, sev, fd.Line,
			html.EscapeString(fd.Rule),
			html.EscapeString(fd.Message),
			html.EscapeString(fd.Improvement),
		)
	}
	fmt.Fprint(f, "</table></body></html>")
	return path, nil
}
