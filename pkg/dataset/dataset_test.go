package dataset

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksaelezovic/curie/pkg/rdf"
)

const vocab = `<http://example.org/Widget> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Gadget> <http://example.org/> .
<http://example.org/Widget> <http://www.w3.org/2000/01/rdf-schema#label> "Widget"@en <http://example.org/> .
<http://example.org/Widget> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Gadget> .
<http://example.org/Sprocket> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/Gadget> <http://example.org/> .
`

func parse(t *testing.T, input string) *Dataset {
	t.Helper()
	quads, err := rdf.NewNQuadsParser(input).Parse()
	require.NoError(t, err)
	ds, err := FromQuads(quads)
	require.NoError(t, err)
	return ds
}

func TestDataset_AddDeduplicates(t *testing.T) {
	ds := New()
	q := rdf.NewQuad(rdf.NewNamedNode("http://example.org/s"), rdf.RDFType, rdf.NewNamedNode("http://example.org/T"), nil)

	added, err := ds.Add(q)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = ds.Add(rdf.NewQuad(rdf.NewNamedNode("http://example.org/s"), rdf.RDFType, rdf.NewNamedNode("http://example.org/T"), nil))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, ds.Size())
	assert.True(t, ds.Has(q))
}

func TestDataset_Match(t *testing.T) {
	ds := parse(t, vocab)
	widget := rdf.NewNamedNode("http://example.org/Widget")
	gadget := rdf.NewNamedNode("http://example.org/Gadget")
	graph := rdf.NewNamedNode("http://example.org/")

	tests := []struct {
		name       string
		s, p, o, g rdf.Term
		expected   int
	}{
		{"fully bound in named graph", widget, rdf.RDFType, gadget, graph, 1},
		{"fully bound in default graph", widget, rdf.RDFType, gadget, rdf.NewDefaultGraph(), 1},
		{"any graph", widget, rdf.RDFType, gadget, nil, 2},
		{"subject only", widget, nil, nil, nil, 3},
		{"graph only", nil, nil, nil, graph, 3},
		{"object only", nil, nil, gadget, nil, 3},
		{"wrong type", widget, rdf.RDFType, rdf.NewNamedNode("http://example.org/Unrelated"), graph, 0},
		{"everything", nil, nil, nil, nil, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ds.Match(tt.s, tt.p, tt.o, tt.g), tt.expected)
		})
	}
}

func TestDataset_MatchOnNil(t *testing.T) {
	var ds *Dataset
	assert.Empty(t, ds.Match(nil, nil, nil, nil))
	assert.Equal(t, 0, ds.Size())
}

func TestDataset_MergeKeepsGraphs(t *testing.T) {
	a := parse(t, `<http://example.org/s> <http://example.org/p> "x" <http://example.org/g1> .
`)
	b := parse(t, `<http://example.org/s> <http://example.org/p> "x" <http://example.org/g2> .
<http://example.org/s> <http://example.org/p> "x" <http://example.org/g1> .
`)

	merged := a.Merge(b, nil)
	assert.Equal(t, 2, merged.Size())
	assert.Equal(t, []string{"http://example.org/g1", "http://example.org/g2"}, merged.Graphs())
	assert.Equal(t, map[string]int{"http://example.org/g1": 1, "http://example.org/g2": 1}, merged.CountByGraph())

	// sources are untouched
	assert.Equal(t, 1, a.Size())
	assert.Equal(t, 2, b.Size())

	// matching still works on the merged indexes
	assert.Len(t, merged.Match(rdf.NewNamedNode("http://example.org/s"), nil, nil, rdf.NewNamedNode("http://example.org/g2")), 1)
}

func TestDataset_WriteNQuads(t *testing.T) {
	ds := parse(t, vocab)

	var buf bytes.Buffer
	require.NoError(t, ds.WriteNQuads(&buf))
	assert.Equal(t, vocab, buf.String())
}
