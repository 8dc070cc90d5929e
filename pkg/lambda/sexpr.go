package lambda

import (
	"strings"

	"github.com/vic/skjnet/pkg/term"
)

type sexprParser struct {
	words []word
	pos   int
	end   int
}

// ParseSexpr parses s-expression notation. A list (h a b ...) is the
// application spine of h to its arguments, except for the special forms
// (JOIN a b ...), (ABS b), (QUOTE b), (FUN x b), (LET x d b) and (APP f x).
func ParseSexpr(input string) (*term.Term, error) {
	p := &sexprParser{words: splitWords(input, true), end: len(input)}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.words) {
		return nil, p.errorf(p.words[p.pos].offset, "unexpected trailing input %q", p.words[p.pos].text)
	}
	return t, nil
}

func (p *sexprParser) errorf(offset int, format string, args ...interface{}) error {
	return newParseError(SyntaxSexpr, offset, format, args...)
}

func (p *sexprParser) peek() (word, bool) {
	if p.pos >= len(p.words) {
		return word{offset: p.end}, false
	}
	return p.words[p.pos], true
}

func (p *sexprParser) parse() (*term.Term, error) {
	w, ok := p.peek()
	if !ok {
		return nil, p.errorf(p.end, "expected term, got end of input")
	}
	p.pos++
	switch w.text {
	case ")":
		return nil, p.errorf(w.offset, "unexpected ')'")
	case "(":
		return p.parseList(w)
	}
	t, msg := leaf(w.text)
	if t == nil {
		return nil, p.errorf(w.offset, "%s", msg)
	}
	return t, nil
}

// parseList parses the remainder of a list whose '(' was consumed.
func (p *sexprParser) parseList(open word) (*term.Term, error) {
	head, ok := p.peek()
	if !ok {
		return nil, p.errorf(p.end, "unclosed '('")
	}
	var form string
	var binder *term.Term
	if isKeyword(head.text) {
		form = head.text
		p.pos++
		if form == term.KeywordFun || form == term.KeywordLet {
			name, ok := p.peek()
			if !ok || !isIdent(name.text) || isKeyword(name.text) || term.IsAtomName(name.text) {
				return nil, p.errorf(name.offset, "expected variable name after %s", form)
			}
			p.pos++
			binder = term.NVar(name.text)
		}
	}
	var items []*term.Term
	for {
		w, ok := p.peek()
		if !ok {
			return nil, p.errorf(open.offset, "unclosed '('")
		}
		if w.text == ")" {
			p.pos++
			break
		}
		t, err := p.parse()
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	arity := func(n int) error {
		if len(items) != n {
			return p.errorf(open.offset, "%s takes %d arguments, got %d", form, n, len(items))
		}
		return nil
	}
	switch form {
	case term.KeywordApp:
		if err := arity(2); err != nil {
			return nil, err
		}
		return term.App(items[0], items[1]), nil
	case term.KeywordJoin:
		if len(items) == 0 {
			return nil, p.errorf(open.offset, "JOIN needs at least one argument")
		}
		return term.JoinAll(items...), nil
	case term.KeywordAbs:
		if err := arity(1); err != nil {
			return nil, err
		}
		return term.Abs(items[0]), nil
	case term.KeywordQuote:
		if err := arity(1); err != nil {
			return nil, err
		}
		return term.Quote(items[0]), nil
	case term.KeywordFun:
		if err := arity(1); err != nil {
			return nil, err
		}
		return term.Fun(binder, items[0]), nil
	case term.KeywordLet:
		if err := arity(2); err != nil {
			return nil, err
		}
		return term.Let(binder, items[0], items[1]), nil
	}
	if len(items) == 0 {
		return nil, p.errorf(open.offset, "empty list")
	}
	return term.Apply(items[0], items[1:]...), nil
}

// PrintSexpr prints t in s-expression notation. Application spines print as
// one list and joins as binary JOIN forms.
func PrintSexpr(t *term.Term) string {
	var sb strings.Builder
	writeSexpr(&sb, t)
	return sb.String()
}

func writeSexpr(sb *strings.Builder, t *term.Term) {
	switch t.Kind() {
	case term.KindAtom, term.KindNVar, term.KindIVar:
		sb.WriteString(t.String())
	case term.KindApp:
		head, args := t.Spine()
		sb.WriteByte('(')
		writeSexpr(sb, head)
		for _, arg := range args {
			sb.WriteByte(' ')
			writeSexpr(sb, arg)
		}
		sb.WriteByte(')')
	case term.KindJoin:
		sb.WriteString("(JOIN ")
		writeSexpr(sb, t.Lhs())
		sb.WriteByte(' ')
		writeSexpr(sb, t.Rhs())
		sb.WriteByte(')')
	case term.KindAbs:
		sb.WriteString("(ABS ")
		writeSexpr(sb, t.Body())
		sb.WriteByte(')')
	case term.KindQuote:
		sb.WriteString("(QUOTE ")
		writeSexpr(sb, t.Body())
		sb.WriteByte(')')
	case term.KindFun:
		sb.WriteString("(FUN ")
		sb.WriteString(t.Var().Name())
		sb.WriteByte(' ')
		writeSexpr(sb, t.Body())
		sb.WriteByte(')')
	case term.KindLet:
		sb.WriteString("(LET ")
		sb.WriteString(t.Var().Name())
		sb.WriteByte(' ')
		writeSexpr(sb, t.Defn())
		sb.WriteByte(' ')
		writeSexpr(sb, t.Body())
		sb.WriteByte(')')
	}
}
