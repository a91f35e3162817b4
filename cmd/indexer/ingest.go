package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"text-indexer/internal/chunk"
	"text-indexer/internal/extract"
	"text-indexer/internal/ingest"
	"text-indexer/internal/webpage"
)

var ingestSourceName string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest content into the vector store",
}

var ingestURLCmd = &cobra.Command{
	Use:   "url [urls...]",
	Short: "Fetch web pages and index their text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestURL,
}

var ingestFileCmd = &cobra.Command{
	Use:   "file [paths...]",
	Short: "Extract document files and index their text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIngestFile,
}

var ingestTextCmd = &cobra.Command{
	Use:   "text [label]",
	Short: "Index text read from stdin under the given source label",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngestText,
}

func init() {
	ingestCmd.PersistentFlags().StringVar(&ingestSourceName, "source-name", "", "source name recorded in chunk metadata")
	ingestCmd.AddCommand(ingestURLCmd, ingestFileCmd, ingestTextCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestURL(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()
	indexer, err := newIndexer(st)
	if err != nil {
		return err
	}

	extractor := webpage.NewExtractor(time.Duration(cfg.Fetch.TimeoutSecs)*time.Second, cfg.Fetch.UserAgent)

	failures := 0
	for i, rawURL := range args {
		if i > 0 {
			// Be polite to the remote host.
			time.Sleep(time.Second)
		}
		ctx, cancel := opCtx()
		text, src, err := extractor.Extract(ctx, rawURL)
		if err != nil {
			cancel()
			log.Error().Err(err).Str("url", rawURL).Msg("Failed to fetch URL")
			failures++
			continue
		}
		rep, err := indexer.IndexText(ctx, collection, src, text, extraMetadata())
		cancel()
		if err != nil {
			log.Error().Err(err).Str("url", rawURL).Msg("Failed to index URL")
			failures++
			continue
		}
		printReport(cmd, rep)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d URLs failed", failures, len(args))
	}
	return nil
}

func runIngestFile(cmd *cobra.Command, args []string) error {
	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()
	indexer, err := newIndexer(st)
	if err != nil {
		return err
	}

	failures := 0
	for _, path := range args {
		text, src, err := extract.File(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to extract file")
			failures++
			continue
		}
		ctx, cancel := opCtx()
		rep, err := indexer.IndexText(ctx, collection, src, text, extraMetadata())
		cancel()
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("Failed to index file")
			failures++
			continue
		}
		printReport(cmd, rep)
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d files failed", failures, len(args))
	}
	return nil
}

func runIngestText(cmd *cobra.Command, args []string) error {
	label := args[0]
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	st, cleanup, err := openStore()
	if err != nil {
		return err
	}
	defer cleanup()
	indexer, err := newIndexer(st)
	if err != nil {
		return err
	}

	ctx, cancel := opCtx()
	defer cancel()
	rep, err := indexer.IndexText(ctx, collection, chunk.Source{Key: label}, string(data), extraMetadata())
	if err != nil {
		return err
	}
	printReport(cmd, rep)
	return nil
}

func extraMetadata() map[string]string {
	if ingestSourceName == "" {
		return nil
	}
	return map[string]string{"source_name": ingestSourceName}
}

func printReport(cmd *cobra.Command, rep *ingest.Report) {
	cmd.Printf("%s: %d chunks (%d written, %d skipped, %d failed) in %s\n",
		rep.Source, rep.Chunks, rep.Written, rep.Skipped, rep.Failed, rep.Took.Round(time.Millisecond))
	for _, o := range rep.Outcomes {
		if o.Status == ingest.StatusFailed {
			cmd.Printf("  chunk %d (%s): %v\n", o.Ordinal, shortID(o.ID), o.Err)
		}
	}
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
