package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

func historyCommand(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse past transcriptions",
	}
	cmd.AddCommand(
		historyListCommand(app),
		historyShowCommand(app),
		historyDeleteCommand(app),
		historyClearCommand(app),
	)
	return cmd
}

func historyListCommand(app *appContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transcriptions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.historyStore()
			if err != nil {
				return err
			}
			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([]table.Row, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, table.Row{
					entry.ID,
					text.Trim(entry.SourceName, 40),
					entry.Model,
					entry.Language,
					entry.WordCount,
					entry.AudioDuration.Round(time.Second),
					entry.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"ID", "SOURCE", "MODEL", "LANG", "WORDS", "AUDIO", "CREATED"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum entries to show (0 for all)")
	return cmd
}

func historyShowCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one transcription in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.historyStore()
			if err != nil {
				return err
			}
			entry, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "source:   %s (%s)\n", entry.SourceName, entry.SourceType)
			fmt.Fprintf(out, "model:    %s\n", entry.Model)
			fmt.Fprintf(out, "language: %s\n", entry.Language)
			fmt.Fprintf(out, "audio:    %s\n", entry.AudioDuration.Round(time.Second))
			fmt.Fprintf(out, "words:    %d\n", entry.WordCount)
			fmt.Fprintf(out, "created:  %s\n\n", entry.CreatedAt.Local().Format(time.RFC1123))
			fmt.Fprintln(out, entry.Text)
			return nil
		},
	}
}

func historyDeleteCommand(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one transcription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := app.historyStore()
			if err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func historyClearCommand(app *appContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all transcriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			store, err := app.historyStore()
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion of all history entries")
	return cmd
}
