package lambda

import (
	"github.com/vic/skjnet/pkg/term"
)

type polishParser struct {
	words []word
	pos   int
	end   int
}

// ParsePolish parses prefix notation: APP f x, JOIN a b, ABS b, QUOTE b,
// FUN x b, LET x d b, atoms, de Bruijn indices and names.
func ParsePolish(input string) (*term.Term, error) {
	p := &polishParser{words: splitWords(input, false), end: len(input)}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.words) {
		return nil, p.errorf(p.words[p.pos].offset, "unexpected trailing input %q", p.words[p.pos].text)
	}
	return t, nil
}

// PrintPolish prints t in prefix notation.
func PrintPolish(t *term.Term) string {
	return t.String()
}

func (p *polishParser) errorf(offset int, format string, args ...interface{}) error {
	return newParseError(SyntaxPolish, offset, format, args...)
}

func (p *polishParser) parse() (*term.Term, error) {
	if p.pos >= len(p.words) {
		return nil, p.errorf(p.end, "expected term, got end of input")
	}
	w := p.words[p.pos]
	p.pos++
	switch w.text {
	case term.KeywordApp, term.KeywordJoin:
		lhs, err := p.parse()
		if err != nil {
			return nil, err
		}
		rhs, err := p.parse()
		if err != nil {
			return nil, err
		}
		if w.text == term.KeywordApp {
			return term.App(lhs, rhs), nil
		}
		return term.Join(lhs, rhs), nil
	case term.KeywordAbs, term.KeywordQuote:
		body, err := p.parse()
		if err != nil {
			return nil, err
		}
		if w.text == term.KeywordAbs {
			return term.Abs(body), nil
		}
		return term.Quote(body), nil
	case term.KeywordFun:
		v, err := p.name()
		if err != nil {
			return nil, err
		}
		body, err := p.parse()
		if err != nil {
			return nil, err
		}
		return term.Fun(v, body), nil
	case term.KeywordLet:
		v, err := p.name()
		if err != nil {
			return nil, err
		}
		defn, err := p.parse()
		if err != nil {
			return nil, err
		}
		body, err := p.parse()
		if err != nil {
			return nil, err
		}
		return term.Let(v, defn, body), nil
	}
	t, msg := leaf(w.text)
	if t == nil {
		return nil, p.errorf(w.offset, "%s", msg)
	}
	return t, nil
}

func (p *polishParser) name() (*term.Term, error) {
	if p.pos >= len(p.words) {
		return nil, p.errorf(p.end, "expected variable name, got end of input")
	}
	w := p.words[p.pos]
	p.pos++
	if isKeyword(w.text) || term.IsAtomName(w.text) || !isIdent(w.text) {
		return nil, p.errorf(w.offset, "expected variable name, got %q", w.text)
	}
	return term.NVar(w.text), nil
}
