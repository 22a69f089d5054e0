package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/codesafe/internal/security"
	"github.com/codewithboateng/codesafe/internal/storage"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage API users",
	}
	var role, password string
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an API user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != storage.RoleViewer && role != storage.RoleAdmin {
				return fmt.Errorf("role must be %q or %q", storage.RoleViewer, storage.RoleAdmin)
			}
			if password == "" {
				password = os.Getenv("CODESAFE_USER_PASSWORD")
			}
			hash, err := security.HashPassword(password)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := db.CreateUser(ctx, args[0], hash, role)
			if err != nil {
				return fmt.Errorf("create user %s: %w", args[0], err)
			}
			_ = db.LogAudit(ctx, "cli", "user.create", args[0], map[string]any{"role": role})
			fmt.Fprintf(cmd.OutOrStdout(), "User OK\n  ID: %d\n  Username: %s\n  Role: %s\n", id, args[0], role)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", storage.RoleViewer, "viewer|admin")
	add.Flags().StringVar(&password, "password", "", "password (default $CODESAFE_USER_PASSWORD)")
	cmd.AddCommand(add)
	return cmd
}

func newRulesCmd(a *app) *cobra.Command {
	var ext string
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the active rule profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sc, err := a.scanner()
			if err != nil {
				return err
			}
			exts := sc.Languages()
			if ext != "" {
				exts = []string{strings.ToLower(strings.TrimPrefix(ext, "."))}
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EXT\tRULE\tSEVERITY\tDETECTOR")
			for _, e := range exts {
				for _, r := range sc.Rules(e) {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e, r.ID, r.Severity, r.Detect)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&ext, "ext", "", "only this extension")
	return cmd
}
