package main

import (
	"errors"

	"github.com/spf13/cobra"

	"text-indexer/internal/ingest"
)

var (
	deleteIDs    []string
	deleteSource string
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete chunks by id or by source",
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().StringSliceVar(&deleteIDs, "ids", nil, "chunk ids to delete")
	deleteCmd.Flags().StringVar(&deleteSource, "source", "", "delete every chunk from this source")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if len(deleteIDs) == 0 && deleteSource == "" {
		return errors.New("provide --ids or --source")
	}

	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := opCtx()
	defer cancel()

	deleter := ingest.NewDeleter(st)
	total := 0
	if len(deleteIDs) > 0 {
		n, err := deleter.ByIDs(ctx, collection, deleteIDs)
		if err != nil {
			return err
		}
		total += n
	}
	if deleteSource != "" {
		n, err := deleter.BySource(ctx, collection, deleteSource)
		if err != nil {
			return err
		}
		total += n
	}
	cmd.Printf("Deleted %d chunks.\n", total)
	return nil
}
