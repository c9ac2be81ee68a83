package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/aleksaelezovic/curie/pkg/curie"
)

func Plural(count int, singular string, plural string) string {
	if count != 1 {
		return plural
	}
	return singular
}

// WriteLoadSummary writes one tab separated line per prefix and graph:
// prefix, graph, quad count. Prefixes without a dataset get their status in
// place of the graph and a count of 0.
func WriteLoadSummary(w io.Writer, result *curie.LoadResult) error {
	var lines [][3]string
	add := func(label string, counts map[string]int) {
		graphs := make([]string, 0, len(counts))
		for g := range counts {
			graphs = append(graphs, g)
		}
		sort.Strings(graphs)
		for _, g := range graphs {
			lines = append(lines, [3]string{label, g, fmt.Sprint(counts[g])})
		}
	}

	if result.Merged != nil {
		add("*", result.Merged.CountByGraph())
	}
	prefixes := make([]string, 0, len(result.Datasets))
	for p := range result.Datasets {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	for _, p := range prefixes {
		add(p, result.Datasets[p].CountByGraph())
	}
	for _, p := range result.Unavailable {
		lines = append(lines, [3]string{p, "unavailable", "0"})
	}
	for _, p := range result.Unknown {
		lines = append(lines, [3]string{p, "unknown", "0"})
	}

	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", l[0], l[1], l[2]); err != nil {
			return err
		}
	}
	return nil
}
