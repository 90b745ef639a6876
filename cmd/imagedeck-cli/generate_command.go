package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		negative   string
		model      string
		lora       string
		loraWeight float64
		resolution string
		steps      int
		cfg        float64
		sampler    string
		scheduler  string
		seed       int64
		batchSize  int
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Submit a generation task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]interface{}{
				"prompt":          args[0],
				"negative_prompt": negative,
				"model":           model,
				"lora":            lora,
				"lora_weight":     loraWeight,
				"resolution":      resolution,
				"steps":           steps,
				"cfg":             cfg,
				"sampler":         sampler,
				"scheduler":       scheduler,
				"seed":            seed,
				"batch_size":      batchSize,
			}
			var result struct {
				PromptID string `json:"prompt_id"`
				Number   int    `json:"number"`
			}
			if err := ctx.postJSON("/api/session/generate", payload, &result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Submitted task %s (queue position %d)\n", result.PromptID, result.Number)
			return nil
		},
	}

	cmd.Flags().StringVarP(&negative, "negative", "n", "", "Negative prompt")
	cmd.Flags().StringVarP(&model, "model", "m", "", "Checkpoint model name")
	cmd.Flags().StringVar(&lora, "lora", "", "LoRA name")
	cmd.Flags().Float64Var(&loraWeight, "lora-weight", 0, "LoRA weight")
	cmd.Flags().StringVarP(&resolution, "resolution", "r", "", "Output resolution, e.g. 512x768")
	cmd.Flags().IntVar(&steps, "steps", 0, "Sampling steps")
	cmd.Flags().Float64Var(&cfg, "cfg", 0, "CFG scale")
	cmd.Flags().StringVar(&sampler, "sampler", "", "Sampler name")
	cmd.Flags().StringVar(&scheduler, "scheduler", "", "Scheduler name")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Seed (-1 for random)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "Batch size")

	return cmd
}
