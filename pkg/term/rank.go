package term

// rebuild returns a term of the same kind as t with new children. Joins are
// renormalized.
func rebuild(t, a, b, c *Term) *Term {
	if a == t.a && b == t.b && c == t.c {
		return t
	}
	switch t.kind {
	case KindApp:
		return App(a, b)
	case KindJoin:
		return Join(a, b)
	case KindAbs:
		return Abs(a)
	case KindQuote:
		return Quote(a)
	case KindFun:
		return Fun(a, b)
	case KindLet:
		return Let(a, b, c)
	}
	return t
}

// mapRanks applies f to every free IVar of t, where depth counts the ABS
// binders crossed so far.
func mapRanks(t *Term, depth uint32, f func(v *Term, depth uint32) *Term) *Term {
	if t.rankBound <= depth {
		return t
	}
	switch t.kind {
	case KindIVar:
		return f(t, depth)
	case KindAbs:
		return rebuild(t, mapRanks(t.a, depth+1, f), nil, nil)
	case KindApp, KindJoin:
		return rebuild(t, mapRanks(t.a, depth, f), mapRanks(t.b, depth, f), nil)
	case KindQuote:
		return rebuild(t, mapRanks(t.a, depth, f), nil, nil)
	case KindFun:
		return rebuild(t, t.a, mapRanks(t.b, depth, f), nil)
	case KindLet:
		return rebuild(t, t.a, mapRanks(t.b, depth, f), mapRanks(t.c, depth, f))
	}
	return t
}

// IncRank shifts every free IVar of t up by one.
func IncRank(t *Term) *Term {
	return ShiftRank(t, 1)
}

// ShiftRank shifts every free IVar of t up by delta.
func ShiftRank(t *Term, delta uint32) *Term {
	if delta == 0 {
		return t
	}
	return mapRanks(t, 0, func(v *Term, depth uint32) *Term {
		return IVar(v.rank + delta)
	})
}

// DecRank shifts every free IVar of t down by one. IVar 0 must not occur
// free in t.
func DecRank(t *Term) *Term {
	return mapRanks(t, 0, func(v *Term, depth uint32) *Term {
		if v.rank == depth {
			panic("term: DecRank of a term using IVAR 0")
		}
		return IVar(v.rank - 1)
	})
}

// HasRank reports whether IVar rank occurs free in t.
func HasRank(t *Term, rank uint32) bool {
	if t.rankBound <= rank {
		return false
	}
	switch t.kind {
	case KindIVar:
		return t.rank == rank
	case KindAbs:
		return HasRank(t.a, rank+1)
	case KindApp, KindJoin:
		return HasRank(t.a, rank) || HasRank(t.b, rank)
	case KindQuote:
		return HasRank(t.a, rank)
	case KindFun:
		return HasRank(t.b, rank)
	case KindLet:
		return HasRank(t.b, rank) || HasRank(t.c, rank)
	}
	return false
}

// Subst replaces free IVar 0 in body with value and lowers the remaining free
// IVars by one, which is the substitution performed by a beta step on ABS.
func Subst(body, value *Term) *Term {
	return mapRanks(body, 0, func(v *Term, depth uint32) *Term {
		switch {
		case v.rank == depth:
			return ShiftRank(value, depth)
		case v.rank > depth:
			return IVar(v.rank - 1)
		}
		return v
	})
}

// SubstVar replaces free occurrences of the nominal variable name with value.
// Binders in t must not capture free variables of value.
func SubstVar(t *Term, name string, value *Term) *Term {
	if !t.HasFree(name) {
		return t
	}
	switch t.kind {
	case KindNVar:
		return value
	case KindApp, KindJoin:
		return rebuild(t, SubstVar(t.a, name, value), SubstVar(t.b, name, value), nil)
	case KindAbs, KindQuote:
		return rebuild(t, SubstVar(t.a, name, value), nil, nil)
	case KindFun:
		return rebuild(t, t.a, SubstVar(t.b, name, value), nil)
	case KindLet:
		body := t.c
		if t.a.name != name {
			body = SubstVar(t.c, name, value)
		}
		return rebuild(t, t.a, SubstVar(t.b, name, value), body)
	}
	return t
}
