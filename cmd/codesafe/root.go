package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/codesafe/internal/model"
	"github.com/codewithboateng/codesafe/internal/rules"
	"github.com/codewithboateng/codesafe/internal/rulesdsl"
	"github.com/codewithboateng/codesafe/internal/shared"
	"github.com/codewithboateng/codesafe/internal/storage"
)

// errFindings makes the process exit non-zero without printing an error.
var errFindings = errors.New("findings at or above --fail-on")

// app carries what every subcommand needs once flags and config are resolved.
type app struct {
	configPath string
	dbPath     string
	packs      []string

	cfg shared.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "codesafe",
		Short:         "codesafe - rule-based source vulnerability scanner",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to YAML config (optional)")
	pf.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides config)")
	pf.StringSliceVar(&a.packs, "rules", nil, "extra YAML rule pack(s)")

	root.AddCommand(
		newScanCmd(a),
		newHistoryCmd(a),
		newReportCmd(a),
		newDiffCmd(a),
		newRulesCmd(a),
		newServeCmd(a),
		newUserCmd(a),
		newEnhanceCmd(a),
		newVersionCmd(),
	)
	return root
}

// load resolves configuration. Precedence: flags > env > file > defaults.
func (a *app) load(logOut io.Writer) error {
	cfg, err := shared.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database.DSN = a.dbPath
	}
	cfg.Rules.Packs = append(cfg.Rules.Packs, a.packs...)
	a.cfg = cfg
	// stdout carries reports, so logs go to stderr.
	a.log = shared.NewLogger(logOut, cfg.Logging.Format, cfg.Logging.Level)
	return nil
}

func (a *app) scanner() (*rules.Scanner, error) {
	opts := []rules.Option{rules.WithDisabled(a.cfg.Rules.Disabled...)}
	for _, p := range a.cfg.Rules.Packs {
		pack, err := rulesdsl.LoadFile(p)
		if err != nil {
			return nil, err
		}
		a.log.Debug("rule pack loaded", "path", p, "languages", len(pack))
		opts = append(opts, rules.WithPack(pack))
	}
	return rules.New(opts...), nil
}

func (a *app) openDB(ctx context.Context) (*storage.DB, error) {
	db, err := storage.OpenSQLite(a.cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	if err := db.CreateSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "codesafe", model.Version)
		},
	}
}
