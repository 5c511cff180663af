package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cerebunit/pkg/cerebunit"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored scores as CSV and JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			outDir, _ := cmd.Flags().GetString("out")
			testName, _ := cmd.Flags().GetString("test")
			modelName, _ := cmd.Flags().GetString("model")

			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Export(cmd.Context(), cerebunit.ExportRequest{OutDir: outDir, Test: testName, Model: modelName})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"directory": summary.Directory,
					"count":     summary.Count,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d scores to %s\n", summary.Count, summary.Directory)
			return nil
		},
	}

	cmd.Flags().String("out", "exports", "Output directory")
	cmd.Flags().String("test", "", "Only scores for this test")
	cmd.Flags().String("model", "", "Only scores for this model")
	return cmd
}
