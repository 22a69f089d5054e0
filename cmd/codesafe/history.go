package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/codesafe/internal/model"
	"github.com/codewithboateng/codesafe/internal/reporting"
	"github.com/codewithboateng/codesafe/internal/storage"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded scans",
	}

	var (
		limit int
		file  string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded scans, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			var rows []storage.ScanRow
			if file != "" {
				rows, err = db.ListByFile(ctx, file, limit)
			} else {
				rows, err = db.List(ctx, limit, 0)
			}
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tFILE\tLANG\tSTARTED\tFINDINGS")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.FileName, r.Language, r.StartedAt.Format("2006-01-02 15:04:05"), r.Findings)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum entries")
	list.Flags().StringVar(&file, "file", "", "only scans of this file name")

	var severity string
	show := &cobra.Command{
		Use:   "show <scan-id>",
		Short: "Show the findings of one scan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := parseSeverityFlag(severity)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if ok, err := db.HasScan(ctx, args[0]); err != nil {
				return err
			} else if !ok {
				return fmt.Errorf("scan %s: %w", args[0], storage.ErrNotFound)
			}
			findings, err := db.ListFindings(ctx, args[0], enabled)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), reporting.FormatText(args[0], findings, isTerminal(cmd.OutOrStdout())))
			return nil
		},
	}
	show.Flags().StringVar(&severity, "severity", "", `comma-separated severities (default all, "none" for empty)`)

	cmd.AddCommand(list, show)
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var scanID, outDir string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write JSON and HTML reports for a recorded scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outDir == "" {
				outDir = a.cfg.Reporting.OutDir
			}
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			var sc model.Scan
			if scanID == "" {
				sc, err = db.LoadLatest(ctx, "")
			} else {
				sc, err = db.LoadScan(ctx, scanID)
			}
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
			jsonPath, err := reporting.WriteJSON(outDir, &sc)
			if err != nil {
				return err
			}
			htmlPath, err := reporting.WriteHTML(outDir, &sc)
			if err != nil {
				return err
			}
			a.log.Info("report written", "scan", sc.ID, "json", jsonPath, "html", htmlPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Report OK\n  Scan: %s\n  JSON: %s\n  HTML: %s\n", sc.ID, jsonPath, htmlPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&scanID, "scan", "", "scan ID (default latest)")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default reporting.out_dir)")
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var base, head, outDir string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the findings of two recorded scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if outDir == "" {
				outDir = a.cfg.Reporting.OutDir
			}
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			bs, err := db.LoadScan(ctx, base)
			if err != nil {
				return fmt.Errorf("base: %w", err)
			}
			hs, err := db.LoadScan(ctx, head)
			if err != nil {
				return fmt.Errorf("head: %w", err)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create out dir: %w", err)
			}
			path, err := reporting.WriteDiffJSON(outDir, &bs, &hs)
			if err != nil {
				return err
			}
			d := reporting.Diff(&bs, &hs)
			fmt.Fprintf(cmd.OutOrStdout(), "Diff OK\n  new: %d  removed: %d  changed: %d\n  %s\n",
				d.Summary.NewCount, d.Summary.RemovedCount, d.Summary.ChangedCount, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "base scan ID")
	cmd.Flags().StringVar(&head, "head", "", "head scan ID")
	cmd.Flags().StringVar(&outDir, "out", "", "output directory (default reporting.out_dir)")
	_ = cmd.MarkFlagRequired("base")
	_ = cmd.MarkFlagRequired("head")
	return cmd
}
