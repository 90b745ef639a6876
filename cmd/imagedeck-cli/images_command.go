package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newImagesCommand(ctx *commandContext) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "images",
		Short: "List the images in the current gallery session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if refresh {
				if err := ctx.postJSON("/api/session/refresh", map[string]string{}, nil); err != nil {
					return err
				}
			}

			var state struct {
				Images []struct {
					FilePath string `json:"file_path"`
					FileName string `json:"file_name"`
					Width    int    `json:"width"`
					Height   int    `json:"height"`
					Folder   string `json:"folder"`
					Model    string `json:"model"`
				} `json:"images"`
				Selected *struct {
					FilePath string `json:"file_path"`
				} `json:"selected"`
				HasMore bool `json:"has_more"`
			}
			if err := ctx.getJSON("/api/session/gallery", &state); err != nil {
				return err
			}
			if len(state.Images) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Gallery is empty. Try --refresh.")
				return nil
			}

			rows := make([][]string, 0, len(state.Images))
			for _, img := range state.Images {
				marker := ""
				if state.Selected != nil && state.Selected.FilePath == img.FilePath {
					marker = "*"
				}
				size := ""
				if img.Width > 0 {
					size = strconv.Itoa(img.Width) + "x" + strconv.Itoa(img.Height)
				}
				rows = append(rows, []string{marker, img.FileName, size, img.Folder, img.Model})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"", "File", "Size", "Folder", "Model"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft}))
			if state.HasMore {
				fmt.Fprintln(cmd.OutOrStdout(), "More images available on the server.")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Refresh the gallery from the backend first")
	return cmd
}
