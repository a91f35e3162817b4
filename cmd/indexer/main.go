package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"text-indexer/internal/config"
	"text-indexer/internal/embedding"
	"text-indexer/internal/helper"
	"text-indexer/internal/ingest"
	"text-indexer/internal/splitter"
	"text-indexer/internal/store"
	"text-indexer/internal/store/chromemstore"
	"text-indexer/internal/store/pgstore"
)

const defaultConfigPath = "./configs/config.yaml"

var (
	cfgPath    string
	collection string
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Index web pages, documents and text into a vector store",
	Long: `indexer splits text into bounded chunks with deterministic,
content-derived ids and upserts them into a vector store, so re-ingesting
the same source never creates duplicates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if collection == "" {
			collection = cfg.Store.Collection
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath, "path to config file")
	rootCmd.PersistentFlags().StringVarP(&collection, "collection", "c", "", "collection name (defaults to config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// openStore builds the configured backend. The returned cleanup closes any
// underlying connections.
func openStore() (store.Store, func(), error) {
	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	switch cfg.Store.Backend {
	case "chromem":
		if !cfg.Store.InMemory {
			if err := helper.CreateFolder(cfg.Store.Path); err != nil {
				return nil, nil, err
			}
		}
		m, err := chromemstore.New(cfg.Store.Path, cfg.Store.InMemory, embedding.ChromemFunc(embedder))
		if err != nil {
			return nil, nil, err
		}
		return m, func() {}, nil
	case "postgres":
		sqldb := pgstore.Connect(cfg.Database.DSN, cfg.Database.Password)
		db := pgstore.NewDB(sqldb, cfg.Database.Debug)
		st := pgstore.New(db, embedder)
		if err := st.Init(context.Background()); err != nil {
			db.Close()
			return nil, nil, err
		}
		return st, func() { db.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

func newIndexer(st store.Store) (*ingest.Indexer, error) {
	seps := cfg.RAG.Separators
	if len(seps) == 0 {
		seps = splitter.DefaultSeparators()
	}
	sp, err := splitter.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap, seps)
	if err != nil {
		return nil, err
	}
	return ingest.NewIndexer(sp, st), nil
}

// opCtx bounds a single store operation.
func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 2*time.Minute)
}
