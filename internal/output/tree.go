package output

import (
	"fmt"
	"sort"

	"github.com/disiqueira/gotree/v3"

	"github.com/aleksaelezovic/curie/pkg/curie"
	"github.com/aleksaelezovic/curie/pkg/dataset"
)

// VisualLoadTree renders a load result as prefix > graph > statement count
type VisualLoadTree struct {
	tree gotree.Tree
}

func NewVisualLoadTree(rootLabel string) VisualLoadTree {
	return VisualLoadTree{tree: gotree.New(rootLabel)}
}

// InsertDataset adds a dataset under label with one child per graph
func (t VisualLoadTree) InsertDataset(label string, ds *dataset.Dataset) {
	node := t.tree.Add(fmt.Sprintf("%s (%d %s)", label, ds.Size(), Plural(ds.Size(), "quad", "quads")))
	counts := ds.CountByGraph()
	for _, g := range ds.Graphs() {
		name := g
		if name == "" {
			name = "(default graph)"
		}
		node.Add(fmt.Sprintf("%s: %d", name, counts[g]))
	}
}

// InsertMissing adds a leaf for a prefix that produced no dataset
func (t VisualLoadTree) InsertMissing(label, reason string) {
	t.tree.Add(fmt.Sprintf("%s [%s]", label, reason))
}

// InsertResult adds every part of a load result, prefixes in sorted order
func (t VisualLoadTree) InsertResult(result *curie.LoadResult) {
	if result.Merged != nil {
		t.InsertDataset("merged", result.Merged)
	}

	prefixes := make([]string, 0, len(result.Datasets))
	for p := range result.Datasets {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		t.InsertDataset(p, result.Datasets[p])
	}

	for _, p := range result.Unavailable {
		t.InsertMissing(p, "unavailable")
	}
	for _, p := range result.Unknown {
		t.InsertMissing(p, "unknown")
	}
}

func (t VisualLoadTree) Render() string {
	return t.tree.Print()
}
