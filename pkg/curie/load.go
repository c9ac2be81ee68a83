package curie

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/aleksaelezovic/curie/pkg/dataset"
)

// LoadOptions selects what Load fetches and how it returns it
type LoadOptions struct {
	// Only lists the prefixes to load. Empty means every registered prefix.
	Only []string
	// Merge returns a single graph-preserving union instead of one dataset per prefix
	Merge bool
}

// LoadResult holds the outcome of Load
type LoadResult struct {
	// Datasets maps each prefix to its vocabulary; empty and unavailable
	// vocabularies are left out. Nil when merging.
	Datasets map[string]*dataset.Dataset
	// Merged is the union of all loaded vocabularies. Nil unless merging.
	Merged *dataset.Dataset
	// Unknown lists requested prefixes that are not registered
	Unknown []string
	// Unavailable lists registered prefixes whose vocabulary could not be loaded
	Unavailable []string
}

// Load fetches the selected vocabularies in parallel through the cache. It
// returns once every fetch has finished, successful or not; only a cancelled
// ctx makes it fail.
func (e *Engine) Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	result := &LoadResult{}
	explicit := len(opts.Only) > 0

	var selected []string
	if explicit {
		seen := make(map[string]bool, len(opts.Only))
		for _, p := range opts.Only {
			if seen[p] {
				continue
			}
			seen[p] = true
			if !e.registry.Has(p) {
				e.logger.Warn("unknown prefix requested", slog.String("prefix", p))
				result.Unknown = append(result.Unknown, p)
				continue
			}
			selected = append(selected, p)
		}
	} else {
		selected = e.registry.Prefixes()
	}

	entries := make([]*Entry, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, p := range selected {
		i, p := i, p
		g.Go(func() error {
			entry, err := e.vocabulary(gctx, p, explicit)
			if err != nil {
				return err
			}
			entries[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var loaded []*dataset.Dataset
	if !opts.Merge {
		result.Datasets = make(map[string]*dataset.Dataset)
	}
	for i, entry := range entries {
		if !entry.Available() {
			result.Unavailable = append(result.Unavailable, selected[i])
			continue
		}
		if opts.Merge {
			loaded = append(loaded, entry.Dataset)
		} else if entry.Dataset.Size() > 0 {
			result.Datasets[selected[i]] = entry.Dataset
		}
	}
	if opts.Merge {
		result.Merged = dataset.New().Merge(loaded...)
	}

	e.logger.Debug("vocabularies loaded",
		slog.Int("requested", len(selected)),
		slog.Int("unavailable", len(result.Unavailable)),
		slog.Int("unknown", len(result.Unknown)))
	return result, nil
}
