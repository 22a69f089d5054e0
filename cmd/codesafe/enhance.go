package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/codesafe/internal/enhance"
	"github.com/codewithboateng/codesafe/internal/source"
)

func newEnhanceCmd(a *app) *cobra.Command {
	var out, modelName string
	cmd := &cobra.Command{
		Use:   "enhance <file>",
		Short: "Request improved code for a file from the enhancement proxy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.enhancer()
			if err != nil {
				return err
			}
			file, err := source.Load(args[0])
			if err != nil {
				return err
			}
			sc, err := a.scanner()
			if err != nil {
				return err
			}
			findings := sc.Scan(file.Content, file.Ext)
			a.log.Info("enhance request", "file", file.Name, "findings", len(findings))

			code, err := client.Enhance(cmd.Context(), enhance.Request{
				Code:     file.Content,
				FileName: file.Name,
				Findings: findings,
				Model:    modelName,
			})
			if err != nil {
				return err
			}
			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), code)
				return err
			}
			if err := os.WriteFile(out, []byte(code), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Enhance OK\n  %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the enhanced code here instead of stdout")
	cmd.Flags().StringVar(&modelName, "model", "", "model override")
	return cmd
}
