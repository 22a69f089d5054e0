package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/codewithboateng/codesafe/internal/model"
	"github.com/codewithboateng/codesafe/internal/reporting"
	"github.com/codewithboateng/codesafe/internal/rules"
	"github.com/codewithboateng/codesafe/internal/source"
	"github.com/codewithboateng/codesafe/internal/storage"
)

type scanOpts struct {
	severity string
	format   string
	save     bool
	noColor  bool
	failOn   string
}

// fileResult is one entry of `scan --format json`.
type fileResult struct {
	FileName string          `json:"file_name"`
	Language string          `json:"language"`
	ScanID   string          `json:"scan_id,omitempty"`
	Findings []model.Finding `json:"findings"`
}

func newScanCmd(a *app) *cobra.Command {
	o := &scanOpts{}
	cmd := &cobra.Command{
		Use:   "scan <file|dir>...",
		Short: "Scan source files for vulnerable patterns",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScan(cmd.Context(), cmd.OutOrStdout(), args, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.severity, "severity", "", `comma-separated severities to show (default all, "none" for empty)`)
	f.StringVar(&o.format, "format", "text", "output format: text|json")
	f.BoolVar(&o.save, "save", false, "record results in history")
	f.BoolVar(&o.noColor, "no-color", false, "disable coloured output")
	f.StringVar(&o.failOn, "fail-on", "", "exit non-zero when a shown finding is at or above this severity")
	return cmd
}

func (a *app) runScan(ctx context.Context, out io.Writer, paths []string, o *scanOpts) error {
	enabled, err := parseSeverityFlag(o.severity)
	if err != nil {
		return err
	}
	var failAt model.Severity
	if o.failOn != "" {
		if failAt, err = model.ParseSeverity(o.failOn); err != nil {
			return err
		}
	}
	if o.format != "text" && o.format != "json" {
		return fmt.Errorf("unknown format %q", o.format)
	}

	sc, err := a.scanner()
	if err != nil {
		return err
	}
	files, err := collect(sc, paths, a)
	if err != nil {
		return err
	}

	var (
		db   *storage.DB
		sups []model.Suppression
	)
	if o.save {
		if db, err = a.openDB(ctx); err != nil {
			return err
		}
		defer db.Close()
		if sups, err = db.ListSuppressions(ctx, true); err != nil {
			return err
		}
	}

	color := !o.noColor && o.format == "text" && isTerminal(out)
	results := make([]fileResult, 0, len(files))
	failed := false
	for _, file := range files {
		findings := sc.Scan(file.Content, file.Ext)
		res := fileResult{FileName: file.Name, Language: file.Ext}
		if db != nil {
			kept, n := rules.ApplySuppressions(findings, file.Name, sups)
			saved, err := db.Save(ctx, file.Name, file.Ext, kept)
			if err != nil {
				return err
			}
			a.log.Info("scan saved", "scan", saved.ID, "file", file.Name, "findings", len(kept), "suppressed", n)
			findings, res.ScanID = kept, saved.ID
		}
		res.Findings = model.Filter(findings, enabled)
		for _, f := range res.Findings {
			if failAt != "" && f.Severity.Rank() >= failAt.Rank() {
				failed = true
			}
		}
		results = append(results, res)
	}

	if o.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			name := r.FileName
			if r.ScanID != "" {
				name += " (" + r.ScanID + ")"
			}
			fmt.Fprint(out, reporting.FormatText(name, r.Findings, color))
		}
	}
	if failed {
		return errFindings
	}
	return nil
}

// collect expands directories and loads explicit files. Explicit files are
// scanned even when no profile matches; they simply yield nothing.
func collect(sc *rules.Scanner, paths []string, a *app) ([]source.File, error) {
	var files []source.File
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !st.IsDir() {
			f, err := source.Load(p)
			if err != nil {
				return nil, err
			}
			files = append(files, f)
			continue
		}
		found, diags := source.Walk(p, sc.Supports)
		for _, w := range diags.Warnings {
			a.log.Warn("walk", "root", p, "warning", w)
		}
		files = append(files, found...)
	}
	return files, nil
}

// parseSeverityFlag maps "" to all severities and "none" to the empty set.
func parseSeverityFlag(v string) (model.SeveritySet, error) {
	if strings.EqualFold(strings.TrimSpace(v), "none") {
		return model.SeveritySet{}, nil
	}
	return model.ParseSeveritySet(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
