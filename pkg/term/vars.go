package term

import (
	"sort"
	"strconv"
)

func (t *Term) computeCaches() {
	switch t.kind {
	case KindAtom:
		t.complexity = atoms[t.name].complexity
	case KindNVar:
		t.free = []string{t.name}
		t.complexity = 1
	case KindIVar:
		t.rankBound = t.rank + 1
		t.complexity = 1
	case KindApp:
		t.free = union(t.a.free, t.b.free)
		t.quoted = union(t.a.quoted, t.b.quoted)
		t.rankBound = max(t.a.rankBound, t.b.rankBound)
		t.complexity = 1 + t.a.complexity + t.b.complexity
	case KindJoin:
		t.free = union(t.a.free, t.b.free)
		t.quoted = union(t.a.quoted, t.b.quoted)
		t.rankBound = max(t.a.rankBound, t.b.rankBound)
		t.complexity = max(t.a.complexity, t.b.complexity)
	case KindAbs:
		t.free = t.a.free
		t.quoted = t.a.quoted
		if t.a.rankBound > 0 {
			t.rankBound = t.a.rankBound - 1
		}
		t.complexity = 1 + t.a.complexity
	case KindQuote:
		t.free = t.a.free
		t.quoted = t.a.free
		t.rankBound = t.a.rankBound
		t.complexity = 1 + t.a.complexity
	case KindFun:
		t.free = without(t.b.free, t.a.name)
		t.quoted = without(t.b.quoted, t.a.name)
		t.rankBound = t.b.rankBound
		t.complexity = 1 + t.b.complexity
	case KindLet:
		t.free = union(t.b.free, without(t.c.free, t.a.name))
		t.quoted = union(t.b.quoted, without(t.c.quoted, t.a.name))
		t.rankBound = max(t.b.rankBound, t.c.rankBound)
		t.complexity = 1 + t.b.complexity + t.c.complexity
	}
}

// FreeVars returns the sorted names of free nominal variables. The slice is
// shared and must not be modified.
func (t *Term) FreeVars() []string { return t.free }

// QuotedVars returns the sorted names of free nominal variables occurring
// inside a QUOTE.
func (t *Term) QuotedVars() []string { return t.quoted }

// HasFree reports whether the nominal variable name occurs free in t.
func (t *Term) HasFree(name string) bool { return contains(t.free, name) }

// HasQuoted reports whether name occurs free inside a quote in t.
func (t *Term) HasQuoted(name string) bool { return contains(t.quoted, name) }

// RankBound is one more than the largest free de Bruijn index in t, or 0 if
// t has no free IVar.
func (t *Term) RankBound() uint32 { return t.rankBound }

// IsClosed reports whether t has no free variables of either kind.
func (t *Term) IsClosed() bool { return len(t.free) == 0 && t.rankBound == 0 }

// Complexity is a deterministic size measure: atoms cost 0 to 3 by arity,
// applications sum their parts and joins take the max of their branches.
func (t *Term) Complexity() int { return t.complexity }

// Fresh returns a variable name starting with prefix that occurs free in
// none of the given terms.
func Fresh(prefix string, avoid ...*Term) string {
	if prefix == "" {
		prefix = "_"
	}
	taken := func(name string) bool {
		for _, t := range avoid {
			if t.HasFree(name) {
				return true
			}
		}
		return false
	}
	if !taken(prefix) {
		return prefix
	}
	for i := 0; ; i++ {
		name := prefix + strconv.Itoa(i)
		if !taken(name) {
			return name
		}
	}
}

func contains(names []string, name string) bool {
	i := sort.SearchStrings(names, name)
	return i < len(names) && names[i] == name
}

func union(xs, ys []string) []string {
	if len(xs) == 0 {
		return ys
	}
	if len(ys) == 0 {
		return xs
	}
	out := make([]string, 0, len(xs)+len(ys))
	i, j := 0, 0
	for i < len(xs) && j < len(ys) {
		switch {
		case xs[i] < ys[j]:
			out = append(out, xs[i])
			i++
		case xs[i] > ys[j]:
			out = append(out, ys[j])
			j++
		default:
			out = append(out, xs[i])
			i++
			j++
		}
	}
	out = append(out, xs[i:]...)
	return append(out, ys[j:]...)
}

func without(names []string, name string) []string {
	if !contains(names, name) {
		return names
	}
	out := make([]string, 0, len(names)-1)
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
