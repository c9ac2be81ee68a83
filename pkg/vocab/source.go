// Package vocab fetches and parses vocabulary documents.
//
// A vocabulary document is an N-Quads serialization of the terms declared
// under one prefix, usually placed in the graph named after the prefix's base
// IRI. Documents are addressed by prefix name through a Source.
package vocab

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by a Source that has no document for a prefix
var ErrNotFound = errors.New("vocabulary document not found")

// Source is an addressable catalog of vocabulary documents keyed by prefix
type Source interface {
	// Fetch opens the raw document for prefix. It returns an error wrapping
	// ErrNotFound when the catalog has no such document.
	Fetch(ctx context.Context, prefix string) (io.ReadCloser, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context, prefix string) (io.ReadCloser, error)

func (f SourceFunc) Fetch(ctx context.Context, prefix string) (io.ReadCloser, error) {
	return f(ctx, prefix)
}

// DocumentName is the conventional file or object name for a prefix
func DocumentName(prefix string) string {
	return prefix + ".nq"
}
