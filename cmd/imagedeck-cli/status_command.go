package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server and backend status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var health struct {
				Status    string `json:"status"`
				Connected bool   `json:"connected"`
			}
			if err := ctx.getJSON("/api/health", &health); err != nil {
				return err
			}
			var version struct {
				Version string `json:"version"`
			}
			if err := ctx.getJSON("/api/version", &version); err != nil {
				return err
			}
			var queue struct {
				Queue *struct {
					QueueRemaining int `json:"queue_remaining"`
				} `json:"queue"`
				Connected bool `json:"connected"`
			}
			if err := ctx.getJSON("/api/session/queue", &queue); err != nil {
				return err
			}

			remaining := 0
			if queue.Queue != nil {
				remaining = queue.Queue.QueueRemaining
			}
			rows := [][]string{
				{"Server", health.Status},
				{"Version", version.Version},
				{"Backend connected", strconv.FormatBool(queue.Connected)},
				{"Queue remaining", strconv.Itoa(remaining)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"}, rows,
				[]columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}
}
