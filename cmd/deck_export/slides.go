package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/deck_agent/internal/export"
)

var slidesCmd = &cobra.Command{
	Use:   "slides",
	Short: "Capture one PNG per slide",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		slide, _ := cmd.Flags().GetInt("slide")
		e, err := newExporter(cmd.Context())
		if err != nil {
			return err
		}
		if slide < 0 || slide > e.total {
			return fmt.Errorf("--slide must be between 1 and %d", e.total)
		}
		return e.run(cmd.Context(), cmd.OutOrStdout(), export.Request{Kind: export.KindPNG, Slide: slide})
	},
}

func init() {
	slidesCmd.Flags().Int("slide", 0, "capture only this slide")
	rootCmd.AddCommand(slidesCmd)
}
