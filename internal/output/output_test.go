package output

import (
	"strings"
	"testing"

	"github.com/aleksaelezovic/curie/pkg/curie"
	"github.com/aleksaelezovic/curie/pkg/dataset"
	"github.com/aleksaelezovic/curie/pkg/rdf"
)

func testResult(t *testing.T) *curie.LoadResult {
	t.Helper()
	ds, err := dataset.FromQuads([]*rdf.Quad{
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/Widget"), rdf.RDFType, rdf.NewNamedNode("http://example.org/Gadget"), rdf.NewNamedNode("http://example.org/")),
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/Widget"), rdf.RDFType, rdf.NewNamedNode("http://example.org/Thing"), rdf.NewNamedNode("http://example.org/")),
		rdf.NewQuad(rdf.NewNamedNode("http://example.org/a"), rdf.NewNamedNode("http://example.org/p"), rdf.NewLiteral("x"), nil),
	})
	if err != nil {
		t.Fatalf("failed to build dataset: %v", err)
	}
	return &curie.LoadResult{
		Datasets:    map[string]*dataset.Dataset{"ex": ds},
		Unknown:     []string{"bogus"},
		Unavailable: []string{"missing"},
	}
}

func TestVisualLoadTree(t *testing.T) {
	tree := NewVisualLoadTree("vocabularies")
	tree.InsertResult(testResult(t))
	rendered := tree.Render()

	for _, want := range []string{
		"vocabularies",
		"ex (3 quads)",
		"http://example.org/: 2",
		"(default graph): 1",
		"missing [unavailable]",
		"bogus [unknown]",
	} {
		if !strings.Contains(rendered, want) {
			t.Errorf("expected %q in\n%s", want, rendered)
		}
	}
	if strings.Index(rendered, "(default graph)") > strings.Index(rendered, "http://example.org/: 2") {
		t.Errorf("expected graphs in sorted order:\n%s", rendered)
	}
}

func TestWriteLoadSummary(t *testing.T) {
	var sb strings.Builder
	if err := WriteLoadSummary(&sb, testResult(t)); err != nil {
		t.Fatalf("WriteLoadSummary() error = %v", err)
	}

	expected := "ex\t\t1\n" +
		"ex\thttp://example.org/\t2\n" +
		"missing\tunavailable\t0\n" +
		"bogus\tunknown\t0\n"
	if sb.String() != expected {
		t.Errorf("unexpected summary:\n%q\nwant\n%q", sb.String(), expected)
	}
}

func TestPlural(t *testing.T) {
	if Plural(1, "quad", "quads") != "quad" {
		t.Error("expected singular for 1")
	}
	if Plural(0, "quad", "quads") != "quads" {
		t.Error("expected plural for 0")
	}
}
