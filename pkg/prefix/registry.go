// Package prefix holds the registry of known vocabulary prefixes.
//
// A Registry maps a short prefix name ("schema") to the base IRI it abbreviates
// ("http://schema.org/"). It is built once and never mutated, so it can be
// shared between goroutines without locking.
package prefix

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalog []byte

// Entry is one prefix definition
type Entry struct {
	Prefix  string `json:"prefix"`
	BaseIRI string `json:"iri"`
}

// Registry is an immutable prefix → base IRI mapping
type Registry struct {
	byPrefix map[string]string
	// entries ordered by descending base IRI length, then by prefix
	byLength []Entry
}

// New builds a registry from a prefix → base IRI map
func New(entries map[string]string) (*Registry, error) {
	r := &Registry{
		byPrefix: make(map[string]string, len(entries)),
		byLength: make([]Entry, 0, len(entries)),
	}

	for p, base := range entries {
		if p == "" || strings.ContainsAny(p, ": \t\n") {
			return nil, fmt.Errorf("invalid prefix name %q", p)
		}
		if base == "" {
			return nil, fmt.Errorf("empty base IRI for prefix %q", p)
		}
		r.byPrefix[p] = base
		r.byLength = append(r.byLength, Entry{Prefix: p, BaseIRI: base})
	}

	sort.Slice(r.byLength, func(i, j int) bool {
		a, b := r.byLength[i], r.byLength[j]
		if len(a.BaseIRI) != len(b.BaseIRI) {
			return len(a.BaseIRI) > len(b.BaseIRI)
		}
		return a.Prefix < b.Prefix
	})

	return r, nil
}

// Parse reads a YAML catalog of `prefix: baseIRI` pairs
func Parse(reader io.Reader) (*Registry, error) {
	var entries map[string]string
	if err := yaml.NewDecoder(reader).Decode(&entries); err != nil {
		if err == io.EOF {
			return New(nil)
		}
		return nil, fmt.Errorf("failed to parse prefix catalog: %w", err)
	}
	return New(entries)
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open prefix catalog: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := Parse(bytes.NewReader(catalog))
	if err != nil {
		panic(fmt.Sprintf("embedded prefix catalog is invalid: %v", err))
	}
	return r
})

// Default returns the registry built from the embedded catalog
func Default() *Registry {
	return defaultRegistry()
}

// BaseIRI returns the base IRI registered for prefix
func (r *Registry) BaseIRI(prefix string) (string, bool) {
	base, ok := r.byPrefix[prefix]
	return base, ok
}

// Has reports whether prefix is registered
func (r *Registry) Has(prefix string) bool {
	_, ok := r.byPrefix[prefix]
	return ok
}

// Match finds the entry whose base IRI is a literal prefix of iri.
// When several match, the longest base IRI wins; equal lengths fall back to
// the alphabetically first prefix name.
func (r *Registry) Match(iri string) (Entry, bool) {
	for _, e := range r.byLength {
		if len(e.BaseIRI) <= len(iri) && strings.HasPrefix(iri, e.BaseIRI) {
			return e, true
		}
	}
	return Entry{}, false
}

// Prefixes returns all prefix names sorted alphabetically
func (r *Registry) Prefixes() []string {
	names := make([]string, 0, len(r.byPrefix))
	for p := range r.byPrefix {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

// Entries returns all entries sorted by prefix name
func (r *Registry) Entries() []Entry {
	entries := make([]Entry, 0, len(r.byPrefix))
	for _, p := range r.Prefixes() {
		entries = append(entries, Entry{Prefix: p, BaseIRI: r.byPrefix[p]})
	}
	return entries
}

// Len returns the number of registered prefixes
func (r *Registry) Len() int {
	return len(r.byPrefix)
}
