package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"audioink/internal/language"
)

func languagesCommand(_ *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List languages accepted by --language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := []table.Row{{language.Auto, "Detect automatically"}}
			for _, code := range language.Supported() {
				rows = append(rows, table.Row{code, language.DisplayName(code)})
			}
			renderTable(cmd.OutOrStdout(), table.Row{"CODE", "LANGUAGE"}, rows)
			return nil
		},
	}
}
