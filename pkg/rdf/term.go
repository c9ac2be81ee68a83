package rdf

import (
	"fmt"
	"strings"
)

// TermType represents the type of an RDF term
type TermType byte

const (
	TermTypeNamedNode TermType = iota + 1
	TermTypeBlankNode
	TermTypeLiteral
	TermTypeDefaultGraph
)

func (t TermType) String() string {
	switch t {
	case TermTypeNamedNode:
		return "NamedNode"
	case TermTypeBlankNode:
		return "BlankNode"
	case TermTypeLiteral:
		return "Literal"
	case TermTypeDefaultGraph:
		return "DefaultGraph"
	default:
		return "unknown"
	}
}

// Term represents an RDF term (IRI, blank node, literal or the default graph)
type Term interface {
	Type() TermType
	// Value returns the lexical value: the IRI, the blank node label or the literal text
	Value() string
	// String returns the N-Quads representation of the term
	String() string
	Equals(other Term) bool
}

// Common vocabulary terms
var (
	RDFType   = NewNamedNode("http://www.w3.org/1999/02/22-rdf-syntax-ns#type")
	XSDString = NewNamedNode("http://www.w3.org/2001/XMLSchema#string")
)

// NamedNode represents an IRI
type NamedNode struct {
	IRI string
}

func NewNamedNode(iri string) *NamedNode {
	return &NamedNode{IRI: iri}
}

// NamedNodes converts a list of IRIs into terms, preserving order
func NamedNodes(iris ...string) []Term {
	terms := make([]Term, len(iris))
	for i, iri := range iris {
		terms[i] = NewNamedNode(iri)
	}
	return terms
}

func (n *NamedNode) Type() TermType {
	return TermTypeNamedNode
}

func (n *NamedNode) Value() string {
	return n.IRI
}

func (n *NamedNode) String() string {
	return "<" + escapeIRI(n.IRI) + ">"
}

func (n *NamedNode) Equals(other Term) bool {
	if on, ok := other.(*NamedNode); ok {
		return n.IRI == on.IRI
	}
	return false
}

// BlankNode represents a blank node
type BlankNode struct {
	ID string
}

func NewBlankNode(id string) *BlankNode {
	return &BlankNode{ID: id}
}

func (b *BlankNode) Type() TermType {
	return TermTypeBlankNode
}

func (b *BlankNode) Value() string {
	return b.ID
}

func (b *BlankNode) String() string {
	return "_:" + b.ID
}

func (b *BlankNode) Equals(other Term) bool {
	if ob, ok := other.(*BlankNode); ok {
		return b.ID == ob.ID
	}
	return false
}

// Literal represents an RDF literal
type Literal struct {
	Lexical   string
	Language  string     // for language-tagged strings
	Direction string     // base direction (ltr or rtl), only with Language
	Datatype  *NamedNode // for typed literals
}

func NewLiteral(value string) *Literal {
	return &Literal{Lexical: value}
}

func NewLiteralWithLanguage(value, language string) *Literal {
	return &Literal{Lexical: value, Language: language}
}

func NewLiteralWithLanguageAndDirection(value, language, direction string) *Literal {
	return &Literal{Lexical: value, Language: language, Direction: direction}
}

func NewLiteralWithDatatype(value string, datatype *NamedNode) *Literal {
	return &Literal{Lexical: value, Datatype: datatype}
}

func (l *Literal) Type() TermType {
	return TermTypeLiteral
}

func (l *Literal) Value() string {
	return l.Lexical
}

func (l *Literal) String() string {
	var sb strings.Builder
	sb.WriteByte('"')
	sb.WriteString(escapeLiteral(l.Lexical))
	sb.WriteByte('"')
	switch {
	case l.Language != "":
		sb.WriteByte('@')
		sb.WriteString(l.Language)
		if l.Direction != "" {
			sb.WriteString("--")
			sb.WriteString(l.Direction)
		}
	case l.Datatype != nil && !l.Datatype.Equals(XSDString):
		sb.WriteString("^^")
		sb.WriteString(l.Datatype.String())
	}
	return sb.String()
}

func (l *Literal) Equals(other Term) bool {
	ol, ok := other.(*Literal)
	if !ok {
		return false
	}
	if l.Lexical != ol.Lexical || l.Language != ol.Language || l.Direction != ol.Direction {
		return false
	}
	return sameDatatype(l.Datatype, ol.Datatype)
}

// sameDatatype treats a missing datatype as xsd:string
func sameDatatype(a, b *NamedNode) bool {
	if a == nil {
		a = XSDString
	}
	if b == nil {
		b = XSDString
	}
	return a.IRI == b.IRI
}

// DefaultGraph represents the default graph
type DefaultGraph struct{}

func NewDefaultGraph() *DefaultGraph {
	return &DefaultGraph{}
}

func (d *DefaultGraph) Type() TermType {
	return TermTypeDefaultGraph
}

func (d *DefaultGraph) Value() string {
	return ""
}

func (d *DefaultGraph) String() string {
	return ""
}

func (d *DefaultGraph) Equals(other Term) bool {
	_, ok := other.(*DefaultGraph)
	return ok
}

// Quad represents an RDF statement scoped to a graph
type Quad struct {
	Subject   Term
	Predicate Term
	Object    Term
	Graph     Term
}

// NewQuad creates a quad; a nil graph means the default graph
func NewQuad(subject, predicate, object, graph Term) *Quad {
	if graph == nil {
		graph = NewDefaultGraph()
	}
	return &Quad{
		Subject:   subject,
		Predicate: predicate,
		Object:    object,
		Graph:     graph,
	}
}

// String returns the quad as a single N-Quads line without the trailing newline
func (q *Quad) String() string {
	if q.Graph == nil || q.Graph.Type() == TermTypeDefaultGraph {
		return fmt.Sprintf("%s %s %s .", q.Subject, q.Predicate, q.Object)
	}
	return fmt.Sprintf("%s %s %s %s .", q.Subject, q.Predicate, q.Object, q.Graph)
}

func (q *Quad) Equals(other *Quad) bool {
	if other == nil {
		return false
	}
	return q.Subject.Equals(other.Subject) &&
		q.Predicate.Equals(other.Predicate) &&
		q.Object.Equals(other.Object) &&
		q.Graph.Equals(other.Graph)
}

func escapeLiteral(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String()
}

// escapeIRI writes characters that are not allowed inside <> as \u escapes
func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") {
		return s
	}
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '<', '>', '"', '{', '}', '|', '^', '`', '\\', ' ':
			fmt.Fprintf(&sb, "\\u%04X", r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
