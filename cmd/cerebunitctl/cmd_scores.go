package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cerebunit/pkg/cerebunit"
)

func newScoresCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "List stored scores, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			testName, _ := cmd.Flags().GetString("test")
			modelName, _ := cmd.Flags().GetString("model")
			limit, _ := cmd.Flags().GetInt("limit")

			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Scores(cmd.Context(), cerebunit.ScoresRequest{Test: testName, Model: modelName, Limit: limit})
			if err != nil {
				return err
			}

			if jsonOut {
				out := make([]map[string]any, 0, len(items))
				for _, item := range items {
					out = append(out, map[string]any{
						"id":             item.ID,
						"created_at_utc": item.CreatedAtUTC.Format(time.RFC3339),
						"test":           item.Test,
						"model":          item.Model,
						"score":          item.Score,
						"passed":         item.Passed,
						"prediction_hz":  item.PredictionHz,
						"observation":    item.Observation,
					})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scores stored.")
				return nil
			}
			for _, item := range items {
				outcome := "pass"
				if !item.Passed {
					outcome = "fail"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %-20s %-16s %s prediction=%gHz observation=%s\n",
					item.ID, item.CreatedAtUTC.Format(time.RFC3339), item.Test, item.Model, outcome, item.PredictionHz, item.Observation)
			}
			return nil
		},
	}

	cmd.Flags().String("test", "", "Only scores for this test")
	cmd.Flags().String("model", "", "Only scores for this model")
	cmd.Flags().Int("limit", 20, "Maximum number of scores")
	return cmd
}
