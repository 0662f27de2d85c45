package main

import (
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/deck_agent/internal/export"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Print the whole deck to one PDF",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newExporter(cmd.Context())
		if err != nil {
			return err
		}
		return e.run(cmd.Context(), cmd.OutOrStdout(), export.Request{Kind: export.KindPDF})
	},
}

func init() {
	rootCmd.AddCommand(pdfCmd)
}
