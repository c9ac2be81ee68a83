package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/aleksaelezovic/curie/internal/config"
	"github.com/aleksaelezovic/curie/pkg/prefix"
	"github.com/aleksaelezovic/curie/pkg/rdf"
	"github.com/aleksaelezovic/curie/pkg/vocab"
)

// documentSink receives imported vocabulary documents. Put reports whether
// the stored document changed.
type documentSink interface {
	Put(ctx context.Context, prefix string, data []byte) (bool, error)
}

type storeSink struct {
	store *vocab.StoreSource
}

func (s storeSink) Put(_ context.Context, prefix string, data []byte) (bool, error) {
	return s.store.Put(prefix, data)
}

type kvSink struct {
	kv *vocab.KVSource
}

func (s kvSink) Put(ctx context.Context, prefix string, data []byte) (bool, error) {
	if err := s.kv.Put(ctx, prefix, data); err != nil {
		return false, err
	}
	return true, nil
}

type importStats struct {
	Imported  int
	Unchanged int
	Skipped   int
}

func importCmd(a *app) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "import <glob>...",
		Short: "Store <prefix>.nq documents for later lookups",
		Long: `Import reads N-Quads documents named <prefix>.nq matching the given
patterns (doublestar syntax, e.g. "vocab/**/*.nq") and stores them in the
badger database or the NATS bucket of the configuration. Documents for
unregistered prefixes are skipped; unchanged documents are not rewritten.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a.close()
			ctx := cmd.Context()

			registry, err := a.registry()
			if err != nil {
				return err
			}

			if target == "" {
				target = config.SourceBadger
				if a.cfg.Vocabulary.Source == config.SourceNATS {
					target = config.SourceNATS
				}
			}

			var sink documentSink
			switch target {
			case config.SourceBadger:
				st, err := a.openStore()
				if err != nil {
					return err
				}
				sink = storeSink{store: st}
			case config.SourceNATS:
				kv, err := a.openKV(ctx)
				if err != nil {
					return err
				}
				sink = kvSink{kv: kv}
			default:
				return fmt.Errorf("unknown import target %q", target)
			}

			var files []string
			for _, pattern := range args {
				matches, err := doublestar.FilepathGlob(pattern)
				if err != nil {
					return fmt.Errorf("bad pattern %q: %w", pattern, err)
				}
				files = append(files, matches...)
			}

			stats, err := importDocuments(ctx, files, registry, sink, a.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, unchanged %d, skipped %d\n",
				stats.Imported, stats.Unchanged, stats.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "Import target (badger, nats); default follows vocabulary.source")
	return cmd
}

// importDocuments validates and stores each <prefix>.nq file. A document that
// does not parse aborts the import.
func importDocuments(ctx context.Context, files []string, registry *prefix.Registry, sink documentSink, logger *slog.Logger) (importStats, error) {
	var stats importStats
	if len(files) == 0 {
		return stats, fmt.Errorf("no documents to import")
	}

	files = append([]string(nil), files...)
	sort.Strings(files)

	seen := make(map[string]string)
	for _, file := range files {
		name, ok := strings.CutSuffix(filepath.Base(file), ".nq")
		if !ok {
			logger.Debug("Skipping file without .nq extension", slog.String("file", file))
			stats.Skipped++
			continue
		}
		if !registry.Has(name) {
			logger.Warn("Skipping document for unregistered prefix", slog.String("file", file), slog.String("prefix", name))
			stats.Skipped++
			continue
		}
		if prev, dup := seen[name]; dup {
			return stats, fmt.Errorf("prefix %q provided by both %s and %s", name, prev, file)
		}
		seen[name] = file

		data, err := os.ReadFile(file)
		if err != nil {
			return stats, fmt.Errorf("failed to read %s: %w", file, err)
		}
		quads, err := (&rdf.NQuadsIOParser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return stats, fmt.Errorf("%s: %w: %w", file, vocab.ErrInvalidDocument, err)
		}

		changed, err := sink.Put(ctx, name, data)
		if err != nil {
			return stats, fmt.Errorf("failed to store %s: %w", name, err)
		}
		if changed {
			stats.Imported++
		} else {
			stats.Unchanged++
		}
		logger.Info("Imported vocabulary document",
			slog.String("prefix", name),
			slog.Int("quads", len(quads)),
			slog.Bool("changed", changed))
	}
	return stats, nil
}
