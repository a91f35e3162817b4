package main

import (
	"github.com/spf13/cobra"

	"text-indexer/internal/answer"
	"text-indexer/internal/chunk"
)

var askK int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question using the indexed content as context",
	Args:  cobra.ExactArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "top", "k", 5, "number of chunks used as context")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := opCtx()
	defer cancel()

	a := answer.New(st, &cfg.AnswerLLM)
	reply, docs, err := a.Ask(ctx, collection, args[0], askK, nil)
	if err != nil {
		return err
	}

	cmd.Println(reply)
	cmd.Println()
	cmd.Println("Sources:")
	for _, d := range docs {
		cmd.Printf("  - %s\n", d.Metadata[chunk.MetaSource])
	}
	return nil
}
