package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"audioink/internal/models"
)

func modelsCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage whisper model files",
	}
	cmd.AddCommand(
		modelsListCommand(app),
		modelsDownloadCommand(app),
		modelsDeleteCommand(app),
	)
	return cmd
}

func modelsListCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog models and their install state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manager, err := app.modelManager()
			if err != nil {
				return err
			}
			statuses, err := manager.List()
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(statuses))
			for _, status := range statuses {
				installed := "-"
				size := formatBytes(status.Spec.Size)
				if status.Installed {
					installed = "yes"
					size = formatBytes(status.SizeOnDisk)
				}
				rows = append(rows, table.Row{status.Spec.ID, status.Spec.Description, size, installed})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"MODEL", "DESCRIPTION", "SIZE", "INSTALLED"}, rows)
			return nil
		},
	}
}

func modelsDownloadCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <model>",
		Short: "Download and install a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.modelManager()
			if err != nil {
				return err
			}

			progress := downloadProgress()
			path, err := manager.Download(cmd.Context(), args[0], progress)
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "installed %s at %s\n", args[0], path)
			return nil
		},
	}
}

func modelsDeleteCommand(app *appContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <model>",
		Short: "Delete an installed model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := app.modelManager()
			if err != nil {
				return err
			}
			if force {
				eng, err := app.inferenceEngine()
				if err != nil {
					return err
				}
				if err := eng.Release(args[0]); err != nil {
					return err
				}
			}
			if err := manager.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "release the model from the inference engine before deleting")
	return cmd
}

// downloadProgress returns a ProgressFunc that redraws one status line.
func downloadProgress() models.ProgressFunc {
	return func(downloaded, total int64) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\r\033[Kdownloading %s / %s (%3.0f%%)",
				formatBytes(downloaded), formatBytes(total),
				float64(downloaded)/float64(total)*100)
			return
		}
		fmt.Fprintf(os.Stderr, "\r\033[Kdownloading %s", formatBytes(downloaded))
	}
}
