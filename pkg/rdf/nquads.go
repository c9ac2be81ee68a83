package rdf

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a syntax error at a line of an N-Quads document
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// NQuadsParser parses N-Quads documents: <subject> <predicate> <object> [<graph>] .
// Lines with three terms are placed in the default graph, so N-Triples input is accepted too.
type NQuadsParser struct {
	input  string
	pos    int
	length int
	line   int

	// blankPrefix is prepended to every blank node label, scoping labels to one document
	blankPrefix string
}

// NewNQuadsParser creates a new N-Quads parser
func NewNQuadsParser(input string) *NQuadsParser {
	return &NQuadsParser{
		input:  input,
		length: len(input),
		line:   1,
	}
}

// WithBlankNodePrefix scopes blank node labels by prefixing them
func (p *NQuadsParser) WithBlankNodePrefix(prefix string) *NQuadsParser {
	p.blankPrefix = prefix
	return p
}

// Parse parses the whole document and returns its quads
func (p *NQuadsParser) Parse() ([]*Quad, error) {
	var quads []*Quad

	for {
		p.skipWhitespaceAndComments()
		if p.pos >= p.length {
			break
		}

		quad, err := p.parseQuad()
		if err != nil {
			return nil, err
		}
		quads = append(quads, quad)
	}

	return quads, nil
}

func (p *NQuadsParser) errorf(format string, args ...interface{}) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

// skipWhitespaceAndComments skips whitespace, newlines and # comments
func (p *NQuadsParser) skipWhitespaceAndComments() {
	for p.pos < p.length {
		ch := p.input[p.pos]
		switch ch {
		case ' ', '\t', '\r':
			p.pos++
		case '\n':
			p.line++
			p.pos++
		case '#':
			for p.pos < p.length && p.input[p.pos] != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

// skipInlineWhitespace skips spaces and tabs but never crosses a line
func (p *NQuadsParser) skipInlineWhitespace() {
	for p.pos < p.length && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

// parseQuad parses: subject predicate object [graph] .
func (p *NQuadsParser) parseQuad() (*Quad, error) {
	subject, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing subject: %w", err)
	}
	if subject.Type() == TermTypeLiteral {
		return nil, p.errorf("literal not allowed as subject")
	}
	p.skipInlineWhitespace()

	predicate, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing predicate: %w", err)
	}
	if predicate.Type() != TermTypeNamedNode {
		return nil, p.errorf("predicate must be an IRI")
	}
	p.skipInlineWhitespace()

	object, err := p.parseTerm()
	if err != nil {
		return nil, fmt.Errorf("error parsing object: %w", err)
	}
	p.skipInlineWhitespace()

	var graph Term
	if p.pos < p.length && (p.input[p.pos] == '<' || p.input[p.pos] == '_') {
		graph, err = p.parseTerm()
		if err != nil {
			return nil, fmt.Errorf("error parsing graph: %w", err)
		}
		p.skipInlineWhitespace()
	}

	if p.pos >= p.length || p.input[p.pos] != '.' {
		return nil, p.errorf("expected '.' at end of quad")
	}
	p.pos++

	// only a comment may follow on the same line
	p.skipInlineWhitespace()
	if p.pos < p.length && p.input[p.pos] != '\n' && p.input[p.pos] != '\r' && p.input[p.pos] != '#' {
		return nil, p.errorf("unexpected content after '.'")
	}

	return NewQuad(subject, predicate, object, graph), nil
}

// parseTerm parses an IRI, blank node or literal
func (p *NQuadsParser) parseTerm() (Term, error) {
	if p.pos >= p.length {
		return nil, p.errorf("unexpected end of input")
	}

	switch ch := p.input[p.pos]; ch {
	case '<':
		iri, err := p.parseIRI()
		if err != nil {
			return nil, err
		}
		return NewNamedNode(iri), nil
	case '_':
		return p.parseBlankNode()
	case '"':
		return p.parseLiteral()
	default:
		return nil, p.errorf("unexpected character %q", ch)
	}
}

// parseIRI parses an absolute IRI enclosed in < >
func (p *NQuadsParser) parseIRI() (string, error) {
	if p.pos >= p.length || p.input[p.pos] != '<' {
		return "", p.errorf("expected '<' at start of IRI")
	}
	p.pos++

	var result strings.Builder
	for p.pos < p.length && p.input[p.pos] != '>' {
		ch := p.input[p.pos]

		if ch == '\\' {
			if p.pos+1 < p.length && (p.input[p.pos+1] == 'u' || p.input[p.pos+1] == 'U') {
				escaped, err := p.processUnicodeEscape()
				if err != nil {
					return "", err
				}
				result.WriteString(escaped)
				continue
			}
			return "", p.errorf("invalid escape sequence in IRI")
		}

		if ch == ' ' || ch == '<' || ch == '"' || ch == '{' || ch == '}' ||
			ch == '|' || ch == '^' || ch == '`' || ch <= 0x1F {
			return "", p.errorf("invalid character in IRI: %q", ch)
		}

		result.WriteByte(ch)
		p.pos++
	}

	if p.pos >= p.length {
		return "", p.errorf("unclosed IRI")
	}
	p.pos++

	iri := result.String()
	if !strings.Contains(iri, ":") {
		return "", p.errorf("relative IRI not allowed: %s", iri)
	}
	return iri, nil
}

// parseBlankNode parses _:label
func (p *NQuadsParser) parseBlankNode() (Term, error) {
	if p.pos+1 >= p.length || p.input[p.pos+1] != ':' {
		return nil, p.errorf("expected ':' after '_' in blank node")
	}
	p.pos += 2

	start := p.pos
	for p.pos < p.length {
		ch := p.input[p.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '<' {
			break
		}
		// a label may contain dots but not end with one
		if ch == '.' && (p.pos+1 >= p.length || isTermBoundary(p.input[p.pos+1])) {
			break
		}
		p.pos++
	}

	if p.pos == start {
		return nil, p.errorf("empty blank node label")
	}
	return NewBlankNode(p.blankPrefix + p.input[start:p.pos]), nil
}

func isTermBoundary(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '#'
}

// parseLiteral parses a quoted literal with an optional language tag or datatype
func (p *NQuadsParser) parseLiteral() (Term, error) {
	p.pos++ // opening quote

	var value strings.Builder
	for p.pos < p.length && p.input[p.pos] != '"' {
		ch := p.input[p.pos]
		if ch == '\n' || ch == '\r' {
			return nil, p.errorf("unescaped line break in literal")
		}
		if ch != '\\' {
			value.WriteByte(ch)
			p.pos++
			continue
		}

		if p.pos+1 >= p.length {
			return nil, p.errorf("unexpected end of input in escape sequence")
		}
		switch esc := p.input[p.pos+1]; esc {
		case 'n':
			value.WriteByte('\n')
		case 't':
			value.WriteByte('\t')
		case 'r':
			value.WriteByte('\r')
		case 'b':
			value.WriteByte('\b')
		case 'f':
			value.WriteByte('\f')
		case '"':
			value.WriteByte('"')
		case '\'':
			value.WriteByte('\'')
		case '\\':
			value.WriteByte('\\')
		case 'u', 'U':
			escaped, err := p.processUnicodeEscape()
			if err != nil {
				return nil, err
			}
			value.WriteString(escaped)
			continue
		default:
			return nil, p.errorf("invalid escape sequence \\%c", esc)
		}
		p.pos += 2
	}

	if p.pos >= p.length {
		return nil, p.errorf("unclosed string literal")
	}
	p.pos++ // closing quote

	if p.pos < p.length && p.input[p.pos] == '@' {
		return p.parseLanguageTag(value.String())
	}
	if strings.HasPrefix(p.input[p.pos:], "^^") {
		p.pos += 2
		datatype, err := p.parseIRI()
		if err != nil {
			return nil, fmt.Errorf("error parsing datatype: %w", err)
		}
		return NewLiteralWithDatatype(value.String(), NewNamedNode(datatype)), nil
	}

	return NewLiteral(value.String()), nil
}

// parseLanguageTag parses @lang or @lang--dir following a literal
func (p *NQuadsParser) parseLanguageTag(value string) (Term, error) {
	p.pos++ // '@'
	start := p.pos
	for p.pos < p.length {
		ch := p.input[p.pos]
		if !(ch == '-' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')) {
			break
		}
		p.pos++
	}

	tag := p.input[start:p.pos]
	if tag == "" || !isLetter(tag[0]) {
		return nil, p.errorf("invalid language tag %q", tag)
	}

	lang, dir, hasDir := strings.Cut(tag, "--")
	if !hasDir {
		return NewLiteralWithLanguage(value, tag), nil
	}
	if lang == "" {
		return nil, p.errorf("missing language tag before '--'")
	}
	if dir != "ltr" && dir != "rtl" {
		return nil, p.errorf("invalid direction %q in language tag", dir)
	}
	return NewLiteralWithLanguageAndDirection(value, lang, dir), nil
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// processUnicodeEscape processes \uXXXX or \UXXXXXXXX
func (p *NQuadsParser) processUnicodeEscape() (string, error) {
	hexDigits := 4
	if p.input[p.pos+1] == 'U' {
		hexDigits = 8
	}
	p.pos += 2

	if p.pos+hexDigits > p.length {
		return "", p.errorf("incomplete Unicode escape sequence")
	}
	hexStr := p.input[p.pos : p.pos+hexDigits]
	p.pos += hexDigits

	codePoint, err := strconv.ParseUint(hexStr, 16, 32)
	if err != nil {
		return "", p.errorf("invalid hex digits in Unicode escape: %s", hexStr)
	}
	return string(rune(codePoint)), nil
}
