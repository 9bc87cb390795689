package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"resume-folio/internal/cache"
	"resume-folio/internal/config"
	"resume-folio/internal/db"
	"resume-folio/internal/embedding"
	"resume-folio/internal/index"
	"resume-folio/internal/logger"
	"resume-folio/internal/pipeline"
)

var (
	configPath string
	cfg        *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("folio failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio",
		Short:         "Turn resumes into structured portfolio profiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
			logger.InitWriter(cfg.Logger, cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to the YAML config file, empty for none")
	root.AddCommand(newParseCmd(), newServeCmd(), newSearchCmd(), newInitDBCmd())
	return root
}

// newPipeline builds the parser, with the Redis cache when it is enabled and
// reachable. The returned func releases the cache.
func newPipeline(ctx context.Context) (*pipeline.Pipeline, func()) {
	opts := []pipeline.Option{
		pipeline.WithTimeout(cfg.Parser.Timeout),
		pipeline.WithLowConfidenceChars(cfg.Parser.LowConfidenceChars),
	}
	if !cfg.Cache.Enabled {
		return pipeline.New(opts...), func() {}
	}
	c, err := cache.NewRedisCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("parse cache disabled")
		return pipeline.New(opts...), func() {}
	}
	if err := c.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("parse cache disabled")
		_ = c.Close()
		return pipeline.New(opts...), func() {}
	}
	return pipeline.New(append(opts, pipeline.WithCache(c))...), func() { _ = c.Close() }
}

func openDB() (*bun.DB, error) {
	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db.NewDB(sqldb, cfg.Database.Debug), nil
}

var errIndexDisabled = errors.New("profile index is disabled, set index.enabled in the config")

// openIndex opens the profile index. An in-memory index is loaded from its
// last export when one exists.
func openIndex() (*index.ProfileIndex, error) {
	if !cfg.Index.Enabled {
		return nil, errIndexDisabled
	}
	embedder, err := embedding.NewEmbedder(cfg.EmbedLLM)
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}
	idx, err := index.NewProfileIndex(cfg.Index, embedding.ChromemFunc(embedder))
	if err != nil {
		return nil, err
	}
	if cfg.Index.InMemory {
		if err := idx.Import(); err != nil {
			log.Debug().Err(err).Msg("starting with an empty index")
		}
	}
	return idx, nil
}

// saveIndex writes an in-memory index back to its export file.
func saveIndex(idx *index.ProfileIndex) {
	if idx == nil || !cfg.Index.InMemory {
		return
	}
	if err := idx.Export(); err != nil {
		log.Error().Err(err).Msg("exporting index")
	}
}
