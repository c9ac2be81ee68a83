package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RDFParser is the interface for parsing line-based RDF serializations
type RDFParser interface {
	// Parse parses RDF data from a reader and returns quads
	Parse(reader io.Reader) ([]*Quad, error)

	// ContentType returns the MIME type this parser handles
	ContentType() string
}

// NewParser creates an RDF parser based on the content type
func NewParser(contentType string) (RDFParser, error) {
	// Normalize content type (remove parameters like charset)
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "application/n-triples", "text/plain":
		return &NTriplesIOParser{}, nil
	case "application/n-quads", "":
		return &NQuadsIOParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// NQuadsIOParser parses N-Quads format (quads with optional graph)
type NQuadsIOParser struct {
	// BlankNodePrefix scopes blank node labels to one parse
	BlankNodePrefix string
}

func (p *NQuadsIOParser) ContentType() string {
	return "application/n-quads"
}

func (p *NQuadsIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	quads, err := NewNQuadsParser(string(data)).WithBlankNodePrefix(p.BlankNodePrefix).Parse()
	if err != nil {
		return nil, fmt.Errorf("error parsing N-Quads: %w", err)
	}
	return quads, nil
}

// NTriplesIOParser parses N-Triples format (triples only, default graph)
type NTriplesIOParser struct {
	BlankNodePrefix string
}

func (p *NTriplesIOParser) ContentType() string {
	return "application/n-triples"
}

func (p *NTriplesIOParser) Parse(reader io.Reader) ([]*Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	quads, err := NewNQuadsParser(string(data)).WithBlankNodePrefix(p.BlankNodePrefix).Parse()
	if err != nil {
		return nil, fmt.Errorf("error parsing N-Triples: %w", err)
	}
	for _, q := range quads {
		if q.Graph.Type() != TermTypeDefaultGraph {
			return nil, fmt.Errorf("error parsing N-Triples: graph term not allowed: %s", q)
		}
	}
	return quads, nil
}

// WriteNQuads serializes quads one per line
func WriteNQuads(w io.Writer, quads []*Quad) error {
	bw := bufio.NewWriter(w)
	for _, q := range quads {
		if _, err := bw.WriteString(q.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// GetSupportedContentTypes returns a list of all supported content types
func GetSupportedContentTypes() []string {
	return []string{
		"application/n-quads",
		"application/n-triples",
		"text/plain", // Alias for N-Triples
	}
}
