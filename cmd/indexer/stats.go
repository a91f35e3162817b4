package main

import (
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the chunk count of the collection",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := opCtx()
	defer cancel()

	n, err := st.Count(ctx, collection)
	if err != nil {
		return err
	}
	cmd.Printf("Collection %q holds %d chunks.\n", collection, n)
	return nil
}
