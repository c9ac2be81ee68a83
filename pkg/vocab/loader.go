package vocab

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/aleksaelezovic/curie/pkg/dataset"
	"github.com/aleksaelezovic/curie/pkg/rdf"
)

// ErrInvalidDocument is returned when a fetched document cannot be parsed
var ErrInvalidDocument = errors.New("invalid vocabulary document")

// Loader fetches documents from a Source and parses them into datasets
type Loader struct {
	source Source
}

func NewLoader(source Source) *Loader {
	return &Loader{source: source}
}

// Load fetches and parses the document for prefix. Blank node labels are
// rewritten to be unique per call so that merged datasets never share them.
func (l *Loader) Load(ctx context.Context, prefix string) (*dataset.Dataset, error) {
	body, err := l.source.Fetch(ctx, prefix)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	parser := &rdf.NQuadsIOParser{BlankNodePrefix: blankNodeScope()}
	quads, err := parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("prefix %q: %w: %w", prefix, ErrInvalidDocument, err)
	}

	ds, err := dataset.FromQuads(quads)
	if err != nil {
		return nil, fmt.Errorf("prefix %q: %w: %w", prefix, ErrInvalidDocument, err)
	}
	return ds, nil
}

func blankNodeScope() string {
	return "u" + strings.ReplaceAll(uuid.NewString(), "-", "") + "_"
}
