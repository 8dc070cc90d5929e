// Package compiler eliminates binders. Every FUN, LET and ABS is turned into
// an application of the I, K, B, C and S combinators by one abstraction rule
// table shared between nominal and de Bruijn variables.
package compiler

import (
	"errors"

	errwrap "github.com/pkg/errors"

	"github.com/vic/skjnet/pkg/term"
)

// ErrNotImplemented marks abstraction cases with no algorithm, currently a
// variable occurring inside a QUOTE.
var ErrNotImplemented = errors.New("not implemented")

// Abstract returns a binder-free term equivalent to FUN v body in which v
// does not occur. v must be a nominal variable. Binders inside body are
// compiled first.
func Abstract(v, body *term.Term) (*term.Term, error) {
	if v.Kind() != term.KindNVar {
		return nil, errwrap.Errorf("abstract over %s: not a variable", v)
	}
	body, err := Compile(body)
	if err != nil {
		return nil, err
	}
	if body.HasQuoted(v.Name()) {
		return nil, errwrap.Wrapf(QAbstract(v, body), "abstract %s", v)
	}
	return abstract(v.Name(), body), nil
}

// QAbstract abstracts a variable that occurs under QUOTE. No rule exists for
// it, so it always fails with ErrNotImplemented.
func QAbstract(v, body *term.Term) error {
	return errwrap.Wrapf(ErrNotImplemented, "qabstract %s in %s", v, body)
}

// abstract implements the rule table on a binder-free body in which name
// does not occur under a quote.
func abstract(name string, body *term.Term) *term.Term {
	if body.Kind() == term.KindNVar && body.Name() == name {
		return term.I
	}
	if body == term.TOP || body == term.BOT {
		return body
	}
	if !body.HasFree(name) {
		return term.App(term.K, body)
	}
	switch body.Kind() {
	case term.KindApp:
		fun, arg := body.Fun(), body.Arg()
		inFun, inArg := fun.HasFree(name), arg.HasFree(name)
		switch {
		case !inFun:
			if arg.Kind() == term.KindNVar && arg.Name() == name {
				return fun
			}
			return term.Apply(term.B, fun, abstract(name, arg))
		case !inArg:
			return term.Apply(term.C, abstract(name, fun), arg)
		default:
			return term.Apply(term.S, abstract(name, fun), abstract(name, arg))
		}
	case term.KindJoin:
		branches := body.JoinTerms()
		out := make([]*term.Term, len(branches))
		for i, b := range branches {
			out[i] = abstract(name, b)
		}
		return term.JoinAll(out...)
	}
	// Compile leaves no other kind that can mention a variable.
	panic("compiler: cannot abstract over " + body.Kind().String())
}

// AbstractRank0 eliminates an ABS binder: it returns a binder-free term
// equivalent to ABS body. IVar 0 is first renamed to a fresh nominal variable
// and the remaining free indices are lowered, then the nominal rule table
// applies.
func AbstractRank0(body *term.Term) (*term.Term, error) {
	body, err := Compile(body)
	if err != nil {
		return nil, err
	}
	return abstractRank0(body)
}

func abstractRank0(body *term.Term) (*term.Term, error) {
	v := term.NVar(term.Fresh("_", body))
	anon := term.Subst(body, v)
	if anon.HasQuoted(v.Name()) {
		return nil, errwrap.Wrapf(QAbstract(v, anon), "abstract index 0")
	}
	return abstract(v.Name(), anon), nil
}

// Compile eliminates every ABS, FUN and LET in t bottom-up.
func Compile(t *term.Term) (*term.Term, error) {
	switch t.Kind() {
	case term.KindAtom, term.KindNVar, term.KindIVar:
		return t, nil
	case term.KindApp:
		fun, err := Compile(t.Fun())
		if err != nil {
			return nil, err
		}
		arg, err := Compile(t.Arg())
		if err != nil {
			return nil, err
		}
		return term.App(fun, arg), nil
	case term.KindJoin:
		branches := t.JoinTerms()
		for i, b := range branches {
			c, err := Compile(b)
			if err != nil {
				return nil, err
			}
			branches[i] = c
		}
		return term.JoinAll(branches...), nil
	case term.KindQuote:
		body, err := Compile(t.Body())
		if err != nil {
			return nil, err
		}
		return term.Quote(body), nil
	case term.KindAbs:
		body, err := Compile(t.Body())
		if err != nil {
			return nil, err
		}
		return abstractRank0(body)
	case term.KindFun:
		body, err := Compile(t.Body())
		if err != nil {
			return nil, err
		}
		return abstractCompiled(t.Var(), body)
	case term.KindLet:
		defn, err := Compile(t.Defn())
		if err != nil {
			return nil, err
		}
		body, err := Compile(t.Body())
		if err != nil {
			return nil, err
		}
		fun, err := abstractCompiled(t.Var(), body)
		if err != nil {
			return nil, err
		}
		return term.App(fun, defn), nil
	}
	return nil, errwrap.Errorf("compile: unknown term kind %s", t.Kind())
}

func abstractCompiled(v, body *term.Term) (*term.Term, error) {
	if body.HasQuoted(v.Name()) {
		return nil, errwrap.Wrapf(QAbstract(v, body), "abstract %s", v)
	}
	return abstract(v.Name(), body), nil
}
