package main

import (
	"github.com/spf13/cobra"

	"text-indexer/internal/chunk"
)

var (
	queryK      int
	querySource string
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the indexed chunks by similarity",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryK, "top", "k", 5, "number of results")
	queryCmd.Flags().StringVar(&querySource, "source", "", "restrict results to one source")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := opCtx()
	defer cancel()

	results, err := st.Query(ctx, collection, args[0], queryK, sourceFilter())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("[%d] %.4f %s\n", i+1, r.Similarity, r.Metadata[chunk.MetaSource])
		cmd.Printf("    %s\n", snippet(r.Content, 200))
	}
	return nil
}

func sourceFilter() map[string]string {
	if querySource == "" {
		return nil
	}
	return map[string]string{chunk.MetaSource: querySource}
}

func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
