package term

import "sort"

// Join returns the canonical join of x and y.
func Join(x, y *Term) *Term {
	return JoinAll(x, y)
}

// JoinAll returns the canonical join of terms: a right-nested chain of
// distinct non-join branches sorted by Compare. TOP absorbs everything, BOT
// is dropped and the empty join is BOT.
func JoinAll(terms ...*Term) *Term {
	var branches []*Term
	for _, t := range terms {
		if t == TOP {
			return TOP
		}
		branches = append(branches, t.JoinTerms()...)
	}
	if len(branches) == 0 {
		return BOT
	}
	sort.Slice(branches, func(i, j int) bool {
		return Compare(branches[i], branches[j]) < 0
	})
	uniq := branches[:1]
	for _, b := range branches[1:] {
		if b != uniq[len(uniq)-1] {
			uniq = append(uniq, b)
		}
	}
	result := uniq[len(uniq)-1]
	for i := len(uniq) - 2; i >= 0; i-- {
		result = intern(key{kind: KindJoin, a: uniq[i], b: result})
	}
	return result
}

// JoinTerms flattens a join into its branches. BOT has no branches.
func (t *Term) JoinTerms() []*Term {
	if t == BOT {
		return nil
	}
	var out []*Term
	for t.kind == KindJoin {
		out = append(out, t.a)
		t = t.b
	}
	return append(out, t)
}
