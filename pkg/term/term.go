// Package term implements the interned term layer: immutable, hash-consed
// expressions of the SKJ calculus with TOP and BOT. Structurally equal terms
// are always the same *Term, so equality is pointer comparison.
package term

import (
	"fmt"
	"sync"
)

// Kind identifies the variant of a term.
type Kind uint8

const (
	KindAtom Kind = iota
	KindNVar
	KindIVar
	KindApp
	KindJoin
	KindAbs
	KindQuote
	KindFun
	KindLet
)

func (k Kind) String() string {
	switch k {
	case KindAtom:
		return "Atom"
	case KindNVar:
		return "NVar"
	case KindIVar:
		return "IVar"
	case KindApp:
		return "App"
	case KindJoin:
		return "Join"
	case KindAbs:
		return "Abs"
	case KindQuote:
		return "Quote"
	case KindFun:
		return "Fun"
	case KindLet:
		return "Let"
	default:
		return "Unknown"
	}
}

// Term is an interned expression. Never construct one directly; use the
// constructors in this package.
type Term struct {
	kind Kind
	name string
	rank uint32
	a    *Term
	b    *Term
	c    *Term

	// Cached at intern time. Safe because terms never change.
	free       []string
	quoted     []string
	rankBound  uint32
	complexity int
	id         uint64
}

type key struct {
	kind Kind
	name string
	rank uint32
	a    *Term
	b    *Term
	c    *Term
}

var table = struct {
	sync.Mutex
	terms  map[key]*Term
	nextID uint64
}{terms: make(map[key]*Term)}

func intern(k key) *Term {
	table.Lock()
	defer table.Unlock()
	if t, ok := table.terms[k]; ok {
		return t
	}
	t := &Term{kind: k.kind, name: k.name, rank: k.rank, a: k.a, b: k.b, c: k.c}
	table.nextID++
	t.id = table.nextID
	t.computeCaches()
	table.terms[k] = t
	return t
}

// Interned reports the number of distinct terms created so far.
func Interned() int {
	table.Lock()
	defer table.Unlock()
	return len(table.terms)
}

// Atom returns the interned atom with the given name. It panics on a name
// that is not a known atom; use IsAtomName to check untrusted input.
func Atom(name string) *Term {
	if !IsAtomName(name) {
		panic(fmt.Sprintf("term: unknown atom %q", name))
	}
	return intern(key{kind: KindAtom, name: name})
}

// NVar returns the nominal variable with the given name.
func NVar(name string) *Term {
	if name == "" {
		panic("term: empty variable name")
	}
	return intern(key{kind: KindNVar, name: name})
}

// IVar returns the de Bruijn variable of the given rank. Rank 0 refers to
// the innermost enclosing binder.
func IVar(rank uint32) *Term {
	return intern(key{kind: KindIVar, rank: rank})
}

// App returns the application of fun to arg. No reduction is performed.
func App(fun, arg *Term) *Term {
	return intern(key{kind: KindApp, a: fun, b: arg})
}

// Apply folds App over args left to right.
func Apply(head *Term, args ...*Term) *Term {
	for _, arg := range args {
		head = App(head, arg)
	}
	return head
}

// Abs returns a de Bruijn abstraction.
func Abs(body *Term) *Term {
	return intern(key{kind: KindAbs, a: body})
}

// Quote returns the reification of body as data.
func Quote(body *Term) *Term {
	return intern(key{kind: KindQuote, a: body})
}

// Fun returns a nominal abstraction binding v, which must be an NVar.
func Fun(v, body *Term) *Term {
	if v.kind != KindNVar {
		panic(fmt.Sprintf("term: FUN binder must be a variable, got %s", v.kind))
	}
	return intern(key{kind: KindFun, a: v, b: body})
}

// Let returns a nominal let binding v to defn inside body.
func Let(v, defn, body *Term) *Term {
	if v.kind != KindNVar {
		panic(fmt.Sprintf("term: LET binder must be a variable, got %s", v.kind))
	}
	return intern(key{kind: KindLet, a: v, b: defn, c: body})
}

func (t *Term) Kind() Kind { return t.kind }

// Name is the name of an atom or nominal variable.
func (t *Term) Name() string { return t.name }

// Rank is the index of a de Bruijn variable.
func (t *Term) Rank() uint32 { return t.rank }

// Fun is the function side of an application.
func (t *Term) Fun() *Term { return t.a }

// Arg is the argument side of an application.
func (t *Term) Arg() *Term { return t.b }

// Lhs and Rhs are the two sides of a join.
func (t *Term) Lhs() *Term { return t.a }
func (t *Term) Rhs() *Term { return t.b }

// Body is the body of ABS, QUOTE, FUN and LET.
func (t *Term) Body() *Term {
	switch t.kind {
	case KindAbs, KindQuote:
		return t.a
	case KindFun:
		return t.b
	case KindLet:
		return t.c
	}
	return nil
}

// Var is the bound variable of FUN and LET.
func (t *Term) Var() *Term {
	if t.kind == KindFun || t.kind == KindLet {
		return t.a
	}
	return nil
}

// Defn is the definition of a LET.
func (t *Term) Defn() *Term {
	if t.kind == KindLet {
		return t.b
	}
	return nil
}

// ID is a process-unique identifier assigned at intern time.
func (t *Term) ID() uint64 { return t.id }

func (t *Term) IsAtom(name string) bool {
	return t.kind == KindAtom && t.name == name
}

// Spine splits an application into its head and arguments, first argument
// first.
func (t *Term) Spine() (*Term, []*Term) {
	n := 0
	for h := t; h.kind == KindApp; h = h.a {
		n++
	}
	args := make([]*Term, n)
	h := t
	for i := n - 1; i >= 0; i-- {
		args[i] = h.b
		h = h.a
	}
	return h, args
}

// Compare is a total order on terms, used to sort join branches. It agrees
// with identity: Compare(x, y) == 0 iff x == y.
func Compare(x, y *Term) int {
	if x == y {
		return 0
	}
	if x.kind != y.kind {
		if x.kind < y.kind {
			return -1
		}
		return 1
	}
	switch x.kind {
	case KindAtom, KindNVar:
		if x.name < y.name {
			return -1
		}
		return 1
	case KindIVar:
		if x.rank < y.rank {
			return -1
		}
		return 1
	}
	for _, pair := range [][2]*Term{{x.a, y.a}, {x.b, y.b}, {x.c, y.c}} {
		if pair[0] == nil {
			continue
		}
		if c := Compare(pair[0], pair[1]); c != 0 {
			return c
		}
	}
	return 0
}
