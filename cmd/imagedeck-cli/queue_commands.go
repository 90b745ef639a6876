package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type queueTask struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Progress int    `json:"progress"`
	Prompt   string `json:"prompt"`
	LoraInfo string `json:"lora_info"`
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show the generation queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Queue *struct {
					Pending []queueTask `json:"pending"`
					History []struct {
						ID          string `json:"id"`
						Status      string `json:"status"`
						Description string `json:"description"`
					} `json:"history"`
					QueueRemaining int `json:"queue_remaining"`
				} `json:"queue"`
				Connected bool `json:"connected"`
			}
			if err := ctx.getJSON("/api/session/queue", &payload); err != nil {
				return err
			}
			if payload.Queue == nil || len(payload.Queue.Pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
				return nil
			}

			rows := make([][]string, 0, len(payload.Queue.Pending))
			for _, task := range payload.Queue.Pending {
				rows = append(rows, []string{
					task.ID,
					task.Status,
					strconv.Itoa(task.Progress) + "%",
					truncate(task.Prompt, 60),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Status", "Progress", "Prompt"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cancel <prompt-id>",
		Short: "Cancel a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.postJSON("/api/session/cancel", map[string]string{"prompt_id": args[0]}, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task cancelled.")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "interrupt",
		Short: "Interrupt the running generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.postJSON("/api/session/interrupt", map[string]string{}, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Generation interrupted.")
			return nil
		},
	})

	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
