// Package miniparser implements the response-reading half of the oracle
// protocol (SPEC_FULL.md §4.8): it parses exactly what a realistic oracle
// answer is — a single literal, a symbol, or a parenthesized
// "(sym arg...)" application whose arguments may themselves be
// applications — not a general surface grammar. It is deliberately not a
// parser for the full term language.
package miniparser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alfc-run/alfc/internal/expr"
	"github.com/alfc-run/alfc/internal/kind"
	"github.com/alfc-run/alfc/internal/state"
)

// Parser implements evaluator.ResponseParser.
type Parser struct {
	st *state.State
}

// New returns a Parser that builds nodes through st.
func New(st *state.State) *Parser { return &Parser{st: st} }

// ParseNextExpr reads the first complete token or parenthesized
// application out of s and returns it.
func (p *Parser) ParseNextExpr(s string) (*expr.Expr, error) {
	toks := tokenize(s)
	if len(toks) == 0 {
		return nil, fmt.Errorf("miniparser: empty response")
	}
	e, rest, err := p.parseOne(toks)
	if err != nil {
		return nil, err
	}
	_ = rest
	return e, nil
}

func (p *Parser) parseOne(toks []string) (*expr.Expr, []string, error) {
	if len(toks) == 0 {
		return nil, nil, fmt.Errorf("miniparser: unexpected end of input")
	}
	head := toks[0]
	if head == "(" {
		rest := toks[1:]
		var children []*expr.Expr
		for {
			if len(rest) == 0 {
				return nil, nil, fmt.Errorf("miniparser: unterminated application")
			}
			if rest[0] == ")" {
				rest = rest[1:]
				break
			}
			var c *expr.Expr
			var err error
			c, rest, err = p.parseOne(rest)
			if err != nil {
				return nil, nil, err
			}
			children = append(children, c)
		}
		if len(children) == 0 {
			return nil, nil, fmt.Errorf("miniparser: empty application")
		}
		return p.st.MkApplyInternal(children), rest, nil
	}
	e, err := p.parseAtom(head)
	if err != nil {
		return nil, nil, err
	}
	return e, toks[1:], nil
}

func (p *Parser) parseAtom(tok string) (*expr.Expr, error) {
	switch {
	case tok == "true" || tok == "false":
		e, err := p.st.MkLiteral(kind.BOOLEAN, tok)
		return e, err
	case strings.HasPrefix(tok, "#x"):
		e, err := p.st.MkLiteral(kind.HEXADECIMAL, tok)
		return e, err
	case strings.HasPrefix(tok, "#b"):
		e, err := p.st.MkLiteral(kind.BINARY, tok)
		return e, err
	case strings.HasPrefix(tok, "\""):
		return p.st.MkLiteral(kind.STRING, strings.Trim(tok, "\""))
	case isNumeric(tok):
		k := kind.NUMERAL
		if strings.ContainsAny(tok, "./") {
			k = kind.DECIMAL
		}
		e, err := p.st.MkLiteral(k, tok)
		return e, err
	default:
		return p.st.MkConst(tok), nil
	}
}

func isNumeric(tok string) bool {
	if tok == "" {
		return false
	}
	start := 0
	if tok[0] == '-' {
		start = 1
	}
	if start == len(tok) {
		return false
	}
	for _, r := range tok[start:] {
		if !unicode.IsDigit(r) && r != '.' && r != '/' {
			return false
		}
	}
	return true
}

// tokenize splits s into parens and whitespace-delimited atoms. Quoted
// strings are kept as one token including their surrounding quotes.
func tokenize(s string) []string {
	var toks []string
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case unicode.IsSpace(rune(c)):
			i++
		case c == '(' || c == ')':
			toks = append(toks, string(c))
			i++
		case c == '"':
			j := i + 1
			for j < n && s[j] != '"' {
				j++
			}
			if j < n {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		default:
			j := i
			for j < n && !unicode.IsSpace(rune(s[j])) && s[j] != '(' && s[j] != ')' {
				j++
			}
			toks = append(toks, s[i:j])
			i = j
		}
	}
	return toks
}
