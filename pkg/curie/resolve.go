package curie

import (
	"context"
	"strconv"

	"github.com/aleksaelezovic/curie/pkg/rdf"
)

// Status describes how a name was resolved
type Status int

const (
	// StatusUnknown is the zero value; no resolution has been made
	StatusUnknown Status = iota
	// StatusMalformed means the name has no prefix separator
	StatusMalformed
	// StatusExpanded means no types were given and the IRI was not checked
	StatusExpanded
	// StatusVerified means the vocabulary asserts one of the types for the IRI
	StatusVerified
	// StatusTypeMismatch means the IRI is described but none of the types is asserted
	StatusTypeMismatch
	// StatusNotFound means the vocabulary does not describe the IRI
	StatusNotFound
	// StatusUnavailable means the vocabulary could not be loaded
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusMalformed:
		return "malformed"
	case StatusExpanded:
		return "expanded"
	case StatusVerified:
		return "verified"
	case StatusTypeMismatch:
		return "type_mismatch"
	case StatusNotFound:
		return "not_found"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Resolution is the detailed outcome of expanding a name
type Resolution struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix,omitempty"`
	// IRI is the expansion, empty unless Status is StatusExpanded or StatusVerified
	IRI string `json:"iri"`
	// Candidate is base IRI plus local part, whatever the outcome
	Candidate   string `json:"candidate,omitempty"`
	MatchedType string `json:"matched_type,omitempty"`
	Status      Status `json:"status"`
}

// Resolve expands name like ExpandTerms and reports why an expansion was
// withheld. Only an unregistered prefix or a cancelled ctx return an error.
func (e *Engine) Resolve(ctx context.Context, name string, types ...rdf.Term) (Resolution, error) {
	res := Resolution{Name: name}

	p, local, ok := SplitName(name)
	if !ok {
		res.Status = StatusMalformed
		return res, nil
	}
	res.Prefix = p

	base, ok := e.registry.BaseIRI(p)
	if !ok {
		return res, &UnknownPrefixError{Prefix: p}
	}
	res.Candidate = base + local

	if len(types) == 0 {
		res.IRI = res.Candidate
		res.Status = StatusExpanded
		return res, nil
	}

	entry, err := e.vocabulary(ctx, p, true)
	if err != nil {
		return res, err
	}
	if !entry.Available() {
		res.Status = StatusUnavailable
		return res, nil
	}

	subject := rdf.NewNamedNode(res.Candidate)
	graph := rdf.NewNamedNode(base)
	for _, t := range types {
		if t == nil {
			continue
		}
		if found := entry.Dataset.Match(subject, rdf.RDFType, t, graph); len(found) > 0 {
			res.IRI = found[0].Subject.Value()
			res.MatchedType = t.Value()
			res.Status = StatusVerified
			return res, nil
		}
	}

	if len(entry.Dataset.Match(subject, nil, nil, graph)) > 0 {
		res.Status = StatusTypeMismatch
	} else {
		res.Status = StatusNotFound
	}
	return res, nil
}
