// Package variables implements placeholder extraction and substitution for
// prompt bodies. Two syntaxes exist and exactly one is active per process:
//
//   - brace:  {name}, with "{{" and "}}" decoding to literal braces
//   - dollar: $name, with no escape sequence
//
// Names are one or more ASCII letters, digits or underscores. Anything that
// does not form a placeholder is copied through unchanged.
package variables

import (
	"fmt"
	"strings"
)

// Format names a placeholder syntax.
type Format string

const (
	FormatBrace  Format = "brace"
	FormatDollar Format = "dollar"
)

// DefaultFormat is used when no format is configured.
const DefaultFormat = FormatBrace

// ParseFormat validates a configured syntax name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatBrace, FormatDollar:
		return Format(s), nil
	case "":
		return DefaultFormat, nil
	}
	return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownFormat, s, FormatBrace, FormatDollar)
}

// Bindings holds everything a single render may substitute.
type Bindings struct {
	Args     map[string]string // values supplied by the caller
	Defaults map[string]string // declared argument defaults
	Optional map[string]bool   // placeholders allowed to stay unresolved
}

// Formatter extracts and substitutes placeholders for one syntax.
type Formatter struct {
	format Format
}

// New returns the formatter for the named syntax.
func New(format string) (*Formatter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return &Formatter{format: f}, nil
}

// Format reports the active syntax.
func (f *Formatter) Format() Format {
	return f.format
}

// Extract returns the distinct placeholder names in body in order of first
// appearance.
func (f *Formatter) Extract(body string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, tok := range f.tokenize(body) {
		if tok.name == "" || seen[tok.name] {
			continue
		}
		seen[tok.name] = true
		names = append(names, tok.name)
	}
	return names
}

// Undeclared returns the placeholder names in body that are not in declared,
// in order of first appearance.
func (f *Formatter) Undeclared(body string, declared []string) []string {
	known := make(map[string]bool, len(declared))
	for _, name := range declared {
		known[name] = true
	}

	var out []string
	for _, name := range f.Extract(body) {
		if !known[name] {
			out = append(out, name)
		}
	}
	return out
}

// Render substitutes every placeholder in body. Each name resolves to the
// supplied argument, then to its default. A name marked optional with no value
// is left exactly as written. Any other unresolved name fails the whole render
// with a *MissingArgumentError and no output.
func (f *Formatter) Render(body string, b Bindings) (string, error) {
	var sb strings.Builder
	sb.Grow(len(body))

	for _, tok := range f.tokenize(body) {
		if tok.name == "" {
			sb.WriteString(tok.text)
			continue
		}
		if v, ok := b.Args[tok.name]; ok {
			sb.WriteString(v)
			continue
		}
		if v, ok := b.Defaults[tok.name]; ok {
			sb.WriteString(v)
			continue
		}
		if b.Optional[tok.name] {
			sb.WriteString(tok.text)
			continue
		}
		return "", &MissingArgumentError{Name: tok.name}
	}
	return sb.String(), nil
}

// token is either decoded literal text (name empty) or a placeholder, in which
// case text holds the placeholder exactly as it appeared in the source.
type token struct {
	text string
	name string
}

func (f *Formatter) tokenize(body string) []token {
	if f.format == FormatDollar {
		return tokenizeDollar(body)
	}
	return tokenizeBrace(body)
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// identEnd returns the index just past the identifier starting at i.
func identEnd(s string, i int) int {
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return i
}

func tokenizeBrace(body string) []token {
	var (
		toks []token
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, token{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '{' && i+1 < len(body) && body[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(body) && body[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			end := identEnd(body, i+1)
			if end > i+1 && end < len(body) && body[end] == '}' {
				flush()
				toks = append(toks, token{text: body[i : end+1], name: body[i+1 : end]})
				i = end + 1
				continue
			}
			lit.WriteByte(c)
			i++
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return toks
}

func tokenizeDollar(body string) []token {
	var toks []token
	start := 0
	for i := 0; i < len(body); {
		if body[i] != '$' {
			i++
			continue
		}
		end := identEnd(body, i+1)
		if end == i+1 {
			i++
			continue
		}
		if start < i {
			toks = append(toks, token{text: body[start:i]})
		}
		toks = append(toks, token{text: body[i:end], name: body[i+1 : end]})
		i = end
		start = end
	}
	if start < len(body) {
		toks = append(toks, token{text: body[start:]})
	}
	return toks
}
