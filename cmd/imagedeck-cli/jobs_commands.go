package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Show background job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Status  string `json:"status"`
				Message string `json:"message"`
			}
			if err := ctx.getJSON("/api/jobs/status", &statuses); err != nil {
				return err
			}
			if len(statuses) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs registered.")
				return nil
			}

			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{s.ID, s.Status, s.Message})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "Status", "Message"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "run <job-id>",
		Short: "Trigger a background job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Status string `json:"status"`
			}
			if err := ctx.postJSON("/api/jobs/run", map[string]string{"job_id": args[0]}, &result); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Status)
			return nil
		},
	})

	return cmd
}
