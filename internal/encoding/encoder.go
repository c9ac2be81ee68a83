package encoding

import (
	"encoding/binary"
	"fmt"

	"github.com/aleksaelezovic/curie/pkg/rdf"
	"github.com/zeebo/xxh3"
)

const (
	// Encoded term size (type byte + 16 bytes for 128-bit hash)
	EncodedTermSize = 17

	// Encoded quad key size (subject, predicate, object, graph)
	QuadKeySize = 4 * EncodedTermSize
)

// literal kinds folded into the type byte so that "a"@en and "a"^^<en> never collide
const (
	literalPlain byte = 0x10 + iota
	literalLang
	literalTyped
)

// EncodedTerm represents a term encoded as a type byte followed by a 128-bit hash
type EncodedTerm [EncodedTermSize]byte

// QuadKey identifies a quad by the encoded form of its four terms in SPOG order
type QuadKey [QuadKeySize]byte

// TermEncoder hashes RDF terms into fixed-size keys
type TermEncoder struct{}

func NewTermEncoder() *TermEncoder {
	return &TermEncoder{}
}

// Hash128 computes a 128-bit xxhash3 hash of the input bytes
func (e *TermEncoder) Hash128(data []byte) [16]byte {
	hash := xxh3.Hash128(data)
	var result [16]byte
	binary.BigEndian.PutUint64(result[0:8], hash.Hi)
	binary.BigEndian.PutUint64(result[8:16], hash.Lo)
	return result
}

// Digest returns the hex form of the 128-bit hash of a document
func (e *TermEncoder) Digest(data []byte) string {
	sum := e.Hash128(data)
	return fmt.Sprintf("%x", sum[:])
}

// EncodeTerm encodes an RDF term into a fixed-size byte array
func (e *TermEncoder) EncodeTerm(term rdf.Term) (EncodedTerm, error) {
	var encoded EncodedTerm

	switch t := term.(type) {
	case *rdf.NamedNode:
		return e.encode(byte(rdf.TermTypeNamedNode), t.IRI), nil
	case *rdf.BlankNode:
		return e.encode(byte(rdf.TermTypeBlankNode), t.ID), nil
	case *rdf.Literal:
		return e.encodeLiteral(t), nil
	case *rdf.DefaultGraph:
		encoded[0] = byte(rdf.TermTypeDefaultGraph)
		return encoded, nil
	case nil:
		return encoded, fmt.Errorf("nil term")
	default:
		return encoded, fmt.Errorf("unknown term type: %T", term)
	}
}

func (e *TermEncoder) encodeLiteral(lit *rdf.Literal) EncodedTerm {
	switch {
	case lit.Language != "":
		return e.encode(literalLang, lit.Lexical+"\x00"+lit.Language+"\x00"+lit.Direction)
	case lit.Datatype != nil && lit.Datatype.IRI != rdf.XSDString.IRI:
		return e.encode(literalTyped, lit.Lexical+"\x00"+lit.Datatype.IRI)
	default:
		return e.encode(literalPlain, lit.Lexical)
	}
}

func (e *TermEncoder) encode(kind byte, value string) EncodedTerm {
	var encoded EncodedTerm
	encoded[0] = kind
	hash := e.Hash128([]byte(value))
	copy(encoded[1:], hash[:])
	return encoded
}

// EncodeQuad encodes the four terms of a quad into a key
func (e *TermEncoder) EncodeQuad(quad *rdf.Quad) (QuadKey, error) {
	var key QuadKey
	terms := [4]rdf.Term{quad.Subject, quad.Predicate, quad.Object, quad.Graph}
	for i, term := range terms {
		if term == nil && i == 3 {
			term = rdf.NewDefaultGraph()
		}
		enc, err := e.EncodeTerm(term)
		if err != nil {
			return key, fmt.Errorf("failed to encode quad position %d: %w", i, err)
		}
		copy(key[i*EncodedTermSize:], enc[:])
	}
	return key, nil
}

// GetTermType extracts the term type from an encoded term, folding literal kinds into TermTypeLiteral
func GetTermType(encoded EncodedTerm) rdf.TermType {
	switch encoded[0] {
	case literalPlain, literalLang, literalTyped:
		return rdf.TermTypeLiteral
	default:
		return rdf.TermType(encoded[0])
	}
}
