// Package curie converts between full IRIs and prefixed short names
// ("schema:Person") and loads the vocabulary datasets behind the prefixes.
//
// Compaction and naive expansion only consult the prefix registry. Expansion
// with candidate types checks the prefix's vocabulary, which is fetched on
// first use and cached for the lifetime of the Cache.
package curie

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aleksaelezovic/curie/pkg/dataset"
	"github.com/aleksaelezovic/curie/pkg/prefix"
	"github.com/aleksaelezovic/curie/pkg/rdf"
	"github.com/aleksaelezovic/curie/pkg/vocab"
)

// DefaultFetchTimeout bounds a single vocabulary fetch
const DefaultFetchTimeout = 30 * time.Second

// Engine compacts and expands names against a prefix registry
type Engine struct {
	registry     *prefix.Registry
	loader       *vocab.Loader
	cache        *Cache
	logger       *slog.Logger
	metrics      *Metrics
	fetchTimeout time.Duration
	concurrency  int
}

// Option configures an Engine
type Option func(*Engine)

// WithCache shares a vocabulary cache between engines
func WithCache(cache *Cache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithFetchTimeout bounds each vocabulary fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.fetchTimeout = d
	}
}

// WithLoadConcurrency limits how many vocabularies Load fetches at once.
// Zero or less means no limit.
func WithLoadConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// New creates an engine over registry. Vocabularies are read from source;
// a nil source makes every vocabulary unavailable.
func New(registry *prefix.Registry, source vocab.Source, opts ...Option) *Engine {
	if registry == nil {
		registry = prefix.Default()
	}
	if source == nil {
		source = vocab.SourceFunc(func(context.Context, string) (io.ReadCloser, error) {
			return nil, vocab.ErrNotFound
		})
	}

	e := &Engine{
		registry:     registry,
		loader:       vocab.NewLoader(source),
		logger:       slog.Default(),
		fetchTimeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cache == nil {
		e.cache = NewCache()
	}
	return e
}

// Registry returns the prefix registry of the engine
func (e *Engine) Registry() *prefix.Registry {
	return e.registry
}

// Cache returns the vocabulary cache of the engine
func (e *Engine) Cache() *Cache {
	return e.cache
}

// SplitName splits a short name at its first colon. Both parts must be
// non-empty.
func SplitName(name string) (prefix, local string, ok bool) {
	prefix, local, ok = strings.Cut(name, ":")
	if !ok || prefix == "" || local == "" {
		return "", "", false
	}
	return prefix, local, true
}

// Compact returns the short name for iri using the longest matching base
// IRI, or "" when no prefix matches
func (e *Engine) Compact(iri string) string {
	entry, ok := e.registry.Match(iri)
	if !ok {
		return ""
	}
	return entry.Prefix + ":" + iri[len(entry.BaseIRI):]
}

// Expand returns the full IRI for name. Without types it is the base IRI of
// the prefix joined with the local part. With types, the first type (in the
// given order) asserted for the IRI in the prefix's vocabulary decides the
// result; if none is asserted, or the vocabulary is unavailable, Expand
// returns "".
//
// A malformed name yields "" and no error. An unregistered prefix yields an
// *UnknownPrefixError.
func (e *Engine) Expand(ctx context.Context, name string, types ...string) (string, error) {
	return e.ExpandTerms(ctx, name, rdf.NamedNodes(types...)...)
}

// ExpandTerms is Expand with types given as terms
func (e *Engine) ExpandTerms(ctx context.Context, name string, types ...rdf.Term) (string, error) {
	res, err := e.Resolve(ctx, name, types...)
	if err != nil {
		return "", err
	}
	return res.IRI, nil
}

func (e *Engine) fetch(prefix string) FetchFunc {
	return func(ctx context.Context) (*dataset.Dataset, error) {
		if e.fetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
			defer cancel()
		}

		start := time.Now()
		ds, err := e.loader.Load(ctx, prefix)
		switch {
		case err == nil:
			e.metrics.recordFetch(fetchLoaded)
			e.logger.Debug("vocabulary loaded",
				slog.String("prefix", prefix),
				slog.Int("quads", ds.Size()),
				slog.Duration("took", time.Since(start)))
		case errors.Is(err, vocab.ErrNotFound):
			e.metrics.recordFetch(fetchNotFound)
		case errors.Is(err, vocab.ErrInvalidDocument):
			e.metrics.recordFetch(fetchInvalid)
		default:
			e.metrics.recordFetch(fetchUnavailable)
		}
		if err != nil {
			e.logger.Debug("vocabulary fetch failed",
				slog.String("prefix", prefix),
				slog.Any("error", err))
		}
		return ds, err
	}
}

// vocabulary returns the cache entry for prefix, fetching it on first use.
// When explicit is set an unavailable vocabulary is reported once per prefix.
func (e *Engine) vocabulary(ctx context.Context, prefix string, explicit bool) (*Entry, error) {
	entry, ok := e.cache.Get(prefix)
	if ok {
		e.metrics.recordHit()
	} else {
		e.metrics.recordMiss()
		var err error
		entry, err = e.cache.Load(ctx, prefix, e.fetch(prefix))
		if err != nil {
			return nil, err
		}
		e.metrics.updateCached(e.cache.Len())
	}

	if explicit && !entry.Available() && entry.warned.CompareAndSwap(false, true) {
		e.logger.Warn("vocabulary unavailable for prefix",
			slog.String("prefix", prefix),
			slog.Any("error", entry.Err))
	}
	return entry, nil
}
