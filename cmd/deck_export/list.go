package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/deck_agent/internal/config"
	"github.com/dgnsrekt/deck_agent/internal/export"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored exports, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadExport()
		if err != nil {
			return err
		}
		store, err := export.NewStore(cfg.ExportDir)
		if err != nil {
			return err
		}
		artifacts, err := store.List()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFILE\tSIZE\tCREATED")
		for _, a := range artifacts {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.ID, a.FileName(), a.SizeBytes, a.CreatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
