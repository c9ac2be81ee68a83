package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/curie/internal/config"
	"github.com/aleksaelezovic/curie/internal/storage"
	"github.com/aleksaelezovic/curie/pkg/curie"
	"github.com/aleksaelezovic/curie/pkg/prefix"
	"github.com/aleksaelezovic/curie/pkg/vocab"
)

// app holds what every subcommand shares: configuration, logger and the
// resources opened for it
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

func (a *app) init(cmd *cobra.Command) error {
	// config loading logs at the level given on the command line, if any
	a.logger = newLogger(cmd, a.logLevel)

	cfg, err := config.NewLoader(a.logger).Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}
	a.cfg = cfg

	a.logger = newLogger(cmd, cfg.Log.Level)
	slog.SetDefault(a.logger)
	return nil
}

func newLogger(cmd *cobra.Command, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// close releases everything opened for the current command
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) registry() (*prefix.Registry, error) {
	if a.cfg.Catalog.Path == "" {
		return prefix.Default(), nil
	}
	r, err := prefix.LoadFile(a.cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return r, nil
}

// openStore opens the badger document store named in the config
func (a *app) openStore() (*vocab.StoreSource, error) {
	st, err := storage.NewBadgerStorage(a.cfg.Vocabulary.BadgerPath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		if err := st.Close(); err != nil {
			a.logger.Warn("Failed to close store", slog.String("error", err.Error()))
		}
	})
	return vocab.NewStoreSource(st), nil
}

// openKV connects to the NATS bucket named in the config
func (a *app) openKV(ctx context.Context) (*vocab.KVSource, error) {
	kv, closeKV, err := vocab.ConnectKV(ctx, a.cfg.Vocabulary.NATSURL, a.cfg.Vocabulary.NATSBucket)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeKV)
	return kv, nil
}

// source opens the vocabulary source selected in the config; nil means none
func (a *app) source(ctx context.Context) (vocab.Source, error) {
	v := a.cfg.Vocabulary
	switch v.Source {
	case config.SourceDir:
		return vocab.NewDirSource(v.Dir), nil
	case config.SourceHTTP:
		return vocab.NewHTTPSource(v.URL, &http.Client{}), nil
	case config.SourceBadger:
		st, err := a.openStore()
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.SourceNATS:
		kv, err := a.openKV(ctx)
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		return nil, nil
	}
}

// engine builds an engine from the config. Metrics are registered on reg
// when it is not nil.
func (a *app) engine(ctx context.Context, reg prometheus.Registerer) (*curie.Engine, vocab.Source, error) {
	registry, err := a.registry()
	if err != nil {
		return nil, nil, err
	}
	src, err := a.source(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []curie.Option{
		curie.WithLogger(a.logger),
		curie.WithFetchTimeout(a.cfg.Vocabulary.FetchTimeout),
		curie.WithLoadConcurrency(a.cfg.Vocabulary.Concurrency),
	}
	if reg != nil {
		m, err := curie.NewMetrics(reg)
		if err != nil {
			return nil, nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, curie.WithMetrics(m))
	}

	return curie.New(registry, src, opts...), src, nil
}
