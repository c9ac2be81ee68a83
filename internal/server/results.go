package server

import (
	"sort"
	"time"

	"github.com/aleksaelezovic/curie/pkg/curie"
	"github.com/aleksaelezovic/curie/pkg/dataset"
)

// CompactResponse is the body of /compact
type CompactResponse struct {
	IRI  string `json:"iri"`
	Name string `json:"name"`
}

// ExpandResponse is the body of /expand; IRI is empty when expansion was withheld
type ExpandResponse struct {
	Name string `json:"name"`
	IRI  string `json:"iri"`
}

// UploadResponse is the body of /data
type UploadResponse struct {
	Prefix  string `json:"prefix"`
	Quads   int    `json:"quads"`
	Changed bool   `json:"changed"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DatasetSummary describes one dataset by its size per graph
type DatasetSummary struct {
	Quads  int            `json:"quads"`
	Graphs map[string]int `json:"graphs"`
}

// LoadResponse is the JSON body of /load
type LoadResponse struct {
	Datasets    map[string]DatasetSummary `json:"datasets,omitempty"`
	Merged      *DatasetSummary           `json:"merged,omitempty"`
	Unknown     []string                  `json:"unknown"`
	Unavailable []string                  `json:"unavailable"`
	DurationMs  int64                     `json:"durationMs"`
}

// FormatLoadResult summarizes a load result without its statements
func FormatLoadResult(result *curie.LoadResult, took time.Duration) LoadResponse {
	resp := LoadResponse{
		Unknown:     nonNil(result.Unknown),
		Unavailable: nonNil(result.Unavailable),
		DurationMs:  took.Milliseconds(),
	}
	if result.Merged != nil {
		summary := summarize(result.Merged)
		resp.Merged = &summary
	}
	if result.Datasets != nil {
		resp.Datasets = make(map[string]DatasetSummary, len(result.Datasets))
		for p, ds := range result.Datasets {
			resp.Datasets[p] = summarize(ds)
		}
	}
	return resp
}

func summarize(ds *dataset.Dataset) DatasetSummary {
	return DatasetSummary{Quads: ds.Size(), Graphs: ds.CountByGraph()}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
