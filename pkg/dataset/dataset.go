// Package dataset provides an in-memory set of RDF quads with pattern matching.
//
// A Dataset is built once (Add/Merge) and then shared read-only; concurrent
// Match calls are safe as long as no goroutine is still adding quads.
package dataset

import (
	"io"
	"sort"

	"github.com/aleksaelezovic/curie/internal/encoding"
	"github.com/aleksaelezovic/curie/pkg/rdf"
)

// Dataset is a set of quads indexed by subject and by graph
type Dataset struct {
	encoder *encoding.TermEncoder

	quads   map[encoding.QuadKey]*rdf.Quad
	order   []encoding.QuadKey // insertion order, for stable iteration
	subject map[encoding.EncodedTerm][]encoding.QuadKey
	graph   map[encoding.EncodedTerm][]encoding.QuadKey
}

// New creates an empty dataset
func New() *Dataset {
	return &Dataset{
		encoder: encoding.NewTermEncoder(),
		quads:   make(map[encoding.QuadKey]*rdf.Quad),
		subject: make(map[encoding.EncodedTerm][]encoding.QuadKey),
		graph:   make(map[encoding.EncodedTerm][]encoding.QuadKey),
	}
}

// FromQuads builds a dataset from parsed quads, dropping duplicates
func FromQuads(quads []*rdf.Quad) (*Dataset, error) {
	ds := New()
	for _, q := range quads {
		if _, err := ds.Add(q); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// Add inserts a quad; it reports false when the quad was already present
func (d *Dataset) Add(quad *rdf.Quad) (bool, error) {
	if quad.Graph == nil {
		quad = rdf.NewQuad(quad.Subject, quad.Predicate, quad.Object, nil)
	}
	key, err := d.encoder.EncodeQuad(quad)
	if err != nil {
		return false, err
	}
	if _, exists := d.quads[key]; exists {
		return false, nil
	}

	d.quads[key] = quad
	d.order = append(d.order, key)
	s := subjectPart(key)
	d.subject[s] = append(d.subject[s], key)
	g := graphPart(key)
	d.graph[g] = append(d.graph[g], key)
	return true, nil
}

// Size returns the number of distinct quads
func (d *Dataset) Size() int {
	if d == nil {
		return 0
	}
	return len(d.quads)
}

// Has reports whether the exact quad is present
func (d *Dataset) Has(quad *rdf.Quad) bool {
	key, err := d.encoder.EncodeQuad(quad)
	if err != nil {
		return false
	}
	_, ok := d.quads[key]
	return ok
}

// Match returns the quads matching the pattern; a nil term matches anything.
// Results follow insertion order.
func (d *Dataset) Match(subject, predicate, object, graph rdf.Term) []*rdf.Quad {
	if d == nil {
		return nil
	}

	var want [4]*encoding.EncodedTerm
	for i, term := range [4]rdf.Term{subject, predicate, object, graph} {
		if term == nil {
			continue
		}
		enc, err := d.encoder.EncodeTerm(term)
		if err != nil {
			return nil
		}
		want[i] = &enc
	}

	candidates := d.order
	switch {
	case want[0] != nil:
		candidates = d.subject[*want[0]]
	case want[3] != nil:
		candidates = d.graph[*want[3]]
	}

	var result []*rdf.Quad
	for _, key := range candidates {
		if matches(key, want) {
			result = append(result, d.quads[key])
		}
	}
	return result
}

// Quads returns every quad in insertion order
func (d *Dataset) Quads() []*rdf.Quad {
	if d == nil {
		return nil
	}
	result := make([]*rdf.Quad, len(d.order))
	for i, key := range d.order {
		result[i] = d.quads[key]
	}
	return result
}

// Graphs returns the distinct graph names, sorted, with the default graph as ""
func (d *Dataset) Graphs() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.graph))
	for _, keys := range d.graph {
		names = append(names, d.quads[keys[0]].Graph.Value())
	}
	sort.Strings(names)
	return names
}

// CountByGraph returns the number of quads per graph name
func (d *Dataset) CountByGraph() map[string]int {
	counts := make(map[string]int)
	if d == nil {
		return counts
	}
	for _, keys := range d.graph {
		counts[d.quads[keys[0]].Graph.Value()] = len(keys)
	}
	return counts
}

// Merge returns a new dataset holding the union of d and the others.
// Graph names are kept, so statements from different graphs stay apart.
func (d *Dataset) Merge(others ...*Dataset) *Dataset {
	merged := New()
	for _, src := range append([]*Dataset{d}, others...) {
		if src == nil {
			continue
		}
		for _, key := range src.order {
			if _, exists := merged.quads[key]; exists {
				continue
			}
			merged.quads[key] = src.quads[key]
			merged.order = append(merged.order, key)
			s := subjectPart(key)
			merged.subject[s] = append(merged.subject[s], key)
			g := graphPart(key)
			merged.graph[g] = append(merged.graph[g], key)
		}
	}
	return merged
}

// WriteNQuads serializes the dataset as N-Quads
func (d *Dataset) WriteNQuads(w io.Writer) error {
	return rdf.WriteNQuads(w, d.Quads())
}

func subjectPart(key encoding.QuadKey) encoding.EncodedTerm {
	var t encoding.EncodedTerm
	copy(t[:], key[:encoding.EncodedTermSize])
	return t
}

func graphPart(key encoding.QuadKey) encoding.EncodedTerm {
	var t encoding.EncodedTerm
	copy(t[:], key[3*encoding.EncodedTermSize:])
	return t
}

func matches(key encoding.QuadKey, want [4]*encoding.EncodedTerm) bool {
	for i, w := range want {
		if w == nil {
			continue
		}
		var part encoding.EncodedTerm
		copy(part[:], key[i*encoding.EncodedTermSize:(i+1)*encoding.EncodedTermSize])
		if part != *w {
			return false
		}
	}
	return true
}
