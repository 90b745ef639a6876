package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
)

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "optimize <prompt>",
		Short: "Run AI prompt optimization and stream the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := json.Marshal(map[string]string{
				"mode":       mode,
				"user_input": args[0],
			})
			if err != nil {
				return err
			}

			resp, err := ctx.client.Post(
				ctx.baseURL()+"/api/session/optimize",
				"application/json", bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("could not reach server: %w", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return decodeResponse(resp, nil)
			}

			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(resp.Body)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				line := scanner.Text()
				if !strings.HasPrefix(line, "data: ") {
					continue
				}
				var event struct {
					Chunk string `json:"chunk"`
					Error string `json:"error"`
					Done  bool   `json:"done"`
				}
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event); err != nil {
					continue
				}
				if event.Error != "" {
					fmt.Fprintln(out)
					return fmt.Errorf("optimization failed: %s", event.Error)
				}
				if event.Done {
					break
				}
				fmt.Fprint(out, event.Chunk)
			}
			fmt.Fprintln(out)
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "generate", "Optimization mode (generate or refine)")
	return cmd
}
