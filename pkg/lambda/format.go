package lambda

import (
	"strconv"
	"strings"

	"github.com/vic/skjnet/pkg/term"
)

// Format prints t in the lambda notation accepted by Parse. De Bruijn
// binders are given fresh names, so Parse(Format(t)) yields an equivalent
// term with FUN in place of ABS.
func Format(t *term.Term) string {
	f := &formatter{avoid: t}
	var sb strings.Builder
	f.write(&sb, t, false)
	return sb.String()
}

type formatter struct {
	avoid *term.Term
	names []string // innermost binder last
	next  int
}

func (f *formatter) fresh() string {
	for {
		name := "v" + strconv.Itoa(f.next)
		f.next++
		if !f.avoid.HasFree(name) {
			return name
		}
	}
}

// write prints t; inArg is set when t sits in argument position and must be
// parenthesized unless atomic.
func (f *formatter) write(sb *strings.Builder, t *term.Term, inArg bool) {
	switch t.Kind() {
	case term.KindAtom, term.KindNVar:
		sb.WriteString(t.Name())
		return
	case term.KindIVar:
		r := int(t.Rank())
		if r < len(f.names) {
			sb.WriteString(f.names[len(f.names)-1-r])
		} else {
			sb.WriteString(strconv.Itoa(r - len(f.names)))
		}
		return
	case term.KindQuote:
		sb.WriteByte('{')
		f.write(sb, t.Body(), false)
		sb.WriteByte('}')
		return
	}
	if inArg {
		sb.WriteByte('(')
		defer sb.WriteByte(')')
	}
	switch t.Kind() {
	case term.KindApp:
		head, args := t.Spine()
		f.write(sb, head, true)
		for _, arg := range args {
			sb.WriteByte(' ')
			f.write(sb, arg, true)
		}
	case term.KindJoin:
		for i, b := range t.JoinTerms() {
			if i > 0 {
				sb.WriteString(" | ")
			}
			f.write(sb, b, b.Kind() != term.KindApp)
		}
	case term.KindAbs:
		name := f.fresh()
		sb.WriteString(name)
		sb.WriteString(": ")
		f.names = append(f.names, name)
		f.write(sb, t.Body(), false)
		f.names = f.names[:len(f.names)-1]
	case term.KindFun:
		sb.WriteString(t.Var().Name())
		sb.WriteString(": ")
		f.write(sb, t.Body(), false)
	case term.KindLet:
		sb.WriteString("let ")
		sb.WriteString(t.Var().Name())
		sb.WriteString(" = ")
		f.write(sb, t.Defn(), false)
		sb.WriteString("; in ")
		f.write(sb, t.Body(), false)
	}
}
