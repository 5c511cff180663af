package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tests",
		Short: "List the available validation tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			client, err := openClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Tests()
			if err != nil {
				return err
			}
			if jsonOut {
				type testJSON struct {
					Name         string   `json:"name"`
					Description  string   `json:"description"`
					Capabilities []string `json:"capabilities"`
				}
				out := make([]testJSON, 0, len(items))
				for _, item := range items {
					caps := make([]string, 0, len(item.Capabilities))
					for _, c := range item.Capabilities {
						caps = append(caps, string(c))
					}
					out = append(out, testJSON{Name: item.Name, Description: item.Description, Capabilities: caps})
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			for _, item := range items {
				caps := make([]string, 0, len(item.Capabilities))
				for _, c := range item.Capabilities {
					caps = append(caps, string(c))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n%-20s requires: %s\n", item.Name, item.Description, "", strings.Join(caps, ", "))
			}
			return nil
		},
	}
}
