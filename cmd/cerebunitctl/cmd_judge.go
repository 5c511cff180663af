package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cerebunit/internal/logging"
	"cerebunit/internal/quantity"
	"cerebunit/pkg/cerebunit"
)

func newJudgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "judge",
		Short: "Judge a recorded model with a validation test",
		Long: `Judge replays a model's recorded spike times through a validation test
and stores the resulting score.

The observation comes from a dataset file (--observation) or is given
inline with a unit (--observed "40 Hz").`,
		Example: `  cerebunitctl judge --test spontaneous_firing --observed "40 Hz" --model-csv PC2015.csv
  cerebunitctl judge --test no_dendrites --observation purkinje.yaml --model-csv PC2015.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			testName, _ := cmd.Flags().GetString("test")
			observationFile, _ := cmd.Flags().GetString("observation")
			observed, _ := cmd.Flags().GetString("observed")
			modelCSV, _ := cmd.Flags().GetString("model-csv")
			modelName, _ := cmd.Flags().GetString("model-name")

			if observationFile != "" && observed != "" {
				return errors.New("cannot specify both --observation and --observed")
			}
			req := cerebunit.JudgeRequest{
				Test:            testName,
				ObservationFile: observationFile,
				ModelCSV:        modelCSV,
				ModelName:       modelName,
			}
			if observed != "" {
				q, err := quantity.Parse(observed)
				if err != nil {
					return fmt.Errorf("invalid --observed: %w", err)
				}
				req.Observation = q
			}
			if !jsonOut {
				req.OnVerdict = logging.VerdictPrinter(cmd.OutOrStdout())
			}

			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Judge(cmd.Context(), req)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"id":            summary.ID,
					"test":          summary.Test,
					"model":         summary.Model,
					"score":         summary.Score,
					"passed":        summary.Passed,
					"prediction":    summary.Prediction.String(),
					"prediction_hz": summary.PredictionHz,
					"observation":   summary.Observation.String(),
					"description":   summary.Description,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\nid: %s\n", summary.Description, summary.ID)
			return nil
		},
	}

	cmd.Flags().String("test", "", "Validation test name (see 'cerebunitctl tests')")
	cmd.Flags().String("observation", "", "Observation dataset file (YAML or JSON)")
	cmd.Flags().String("observed", "", `Observed firing rate with unit, e.g. "40 Hz"`)
	cmd.Flags().String("model-csv", "", "Recorded spike times CSV (condition,region,time_ms)")
	cmd.Flags().String("model-name", "", "Model name (defaults to the CSV base name)")
	_ = cmd.MarkFlagRequired("test")
	_ = cmd.MarkFlagRequired("model-csv")
	return cmd
}
