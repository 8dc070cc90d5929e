package order

import (
	"context"
	"math"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/term"
)

// noHyp marks a result that used no open hypothesis.
const noHyp = math.MaxInt

type result struct {
	t   engine.Truth
	hyp int // lowest stack index of a hypothesis the result relies on
}

func decided(t engine.Truth) result { return result{t: t, hyp: noHyp} }

func (r result) and(o result) result {
	t := r.t.And(o.t)
	if t == engine.False {
		return decided(engine.False)
	}
	return result{t: t, hyp: min(r.hyp, o.hyp)}
}

type provisional struct {
	p   pair
	hyp int
}

// session is one decision. Goals under comparison are hypotheses: meeting
// one again counts as True, which is the coinductive reading of the order
// on infinite trees. A True answer that relied on an open hypothesis is
// provisional until that hypothesis is discharged, and dropped if it fails.
type session struct {
	d      *Decider
	ctx    context.Context
	approx bool

	stack []pair
	open  map[pair]int
	memo  map[pair]engine.Truth
	prov  []provisional
	goals int
}

func (d *Decider) newSession(ctx context.Context, approx bool) *session {
	return &session{
		d:      d,
		ctx:    ctx,
		approx: approx && d.opts.ApproxDepth > 0,
		open:   make(map[pair]int),
		memo:   make(map[pair]engine.Truth),
	}
}

// decideLess is the top-level entry of a session.
func (s *session) decideLess(x, y *term.Term) engine.Truth {
	r := s.less(x, y, 0)
	if r.t != engine.Unknown || !s.approx {
		return r.t
	}
	if t := s.approximate(x, y); t != engine.Unknown {
		s.memo[pair{x, y}] = t
		return t
	}
	return engine.Unknown
}

func (s *session) less(x, y *term.Term, depth int) result {
	if x == y || x == term.BOT || y == term.TOP {
		return decided(engine.True)
	}
	p := pair{x, y}
	if t, ok := s.memo[p]; ok {
		return decided(t)
	}
	if t, ok := s.d.lookup(p); ok {
		return decided(t)
	}
	if i, ok := s.open[p]; ok {
		return result{t: engine.True, hyp: i}
	}
	if depth > s.d.opts.MaxDepth || s.goals >= s.d.opts.MaxGoals {
		return decided(engine.Unknown)
	}
	s.goals++

	i := len(s.stack)
	s.stack = append(s.stack, p)
	s.open[p] = i
	r := s.step(x, y, depth)
	s.stack = s.stack[:i]
	delete(s.open, p)

	switch {
	case r.t == engine.True && r.hyp < i:
		s.prov = append(s.prov, provisional{p, r.hyp})
		return r
	case r.t == engine.True:
		s.memo[p] = engine.True
		s.settle(i, true)
		return decided(engine.True)
	case r.t == engine.False:
		s.memo[p] = engine.False
	}
	s.settle(i, false)
	return decided(r.t)
}

// settle resolves the provisional answers that relied on goal i.
func (s *session) settle(i int, proved bool) {
	kept := s.prov[:0]
	for _, pr := range s.prov {
		switch {
		case pr.hyp < i:
			kept = append(kept, pr)
		case proved:
			s.memo[pr.p] = engine.True
		}
	}
	s.prov = kept
}

func (s *session) hnf(t *term.Term) (*term.Term, bool) {
	h, _, ok := s.d.eng.HeadNormalize(s.ctx, t, s.d.opts.Budget)
	return h, ok
}

func (s *session) step(x, y *term.Term, depth int) result {
	// Joins written out are split before reduction, so a divergent branch
	// cannot hide a decided one.
	if x.Kind() == term.KindJoin {
		return s.all(x.JoinTerms(), y, depth)
	}
	if y.Kind() == term.KindJoin {
		for _, b := range y.JoinTerms() {
			if r := s.less(x, b, depth+1); r.t == engine.True {
				return r
			}
		}
	}

	hx, okx := s.hnf(x)
	hy, oky := s.hnf(y)
	if !okx || !oky {
		s.d.log.Debug("head normalization ran out of budget", "x", x, "y", y)
		return decided(engine.Unknown)
	}
	if hx == hy || hx == term.BOT || hy == term.TOP {
		return decided(engine.True)
	}

	sx, sy := classify(hx), classify(hy)
	switch {
	case sx.kind == shapeJoin:
		return s.all(hx.JoinTerms(), hy, depth)
	case sy.kind == shapeJoin:
		r := s.anyBranch(hx, sx, hy.JoinTerms(), depth)
		if r.t == engine.Unknown && sx.kind == shapeLambda {
			return s.eta(hx, sx, hy, sy, depth)
		}
		return r
	case sx.kind == shapeLambda || sy.kind == shapeLambda:
		return s.eta(hx, sx, hy, sy, depth)
	case sx.kind == shapeTop:
		// A free head can always be sent below TOP.
		if sy.kind == shapeNeutral || sy.kind == shapeQuote || sy.kind == shapeBot {
			return decided(engine.False)
		}
	case sy.kind == shapeBot:
		if sx.kind == shapeNeutral || sx.kind == shapeQuote {
			return decided(engine.False)
		}
	case sx.kind == shapeNeutral && sy.kind == shapeNeutral:
		return s.neutral(sx, sy, depth)
	case sx.kind == shapeQuote && sy.kind == shapeQuote:
		return s.quotes(hx.Body(), hy.Body(), depth)
	case sx.kind == shapeNeutral && sy.kind == shapeQuote,
		sx.kind == shapeQuote && sy.kind == shapeNeutral:
		return decided(engine.False)
	}
	return decided(engine.Unknown)
}

// all decides every branch ⊑ y.
func (s *session) all(branches []*term.Term, y *term.Term, depth int) result {
	r := decided(engine.True)
	for _, b := range branches {
		r = r.and(s.less(b, y, depth+1))
		if r.t == engine.False {
			return r
		}
	}
	return r
}

// anyBranch decides x ⊑ a join. One branch above x proves it. It is
// refuted when x is TOP or has a free head h and no branch can follow:
// sending h to TOP and every other head to BOT leaves x = TOP while each
// branch with another head becomes BOT and quotes stay quotes.
func (s *session) anyBranch(hx *term.Term, sx shape, branches []*term.Term, depth int) result {
	refutable := sx.kind == shapeTop || sx.kind == shapeNeutral
	for _, b := range branches {
		r := s.less(hx, b, depth+1)
		if r.t == engine.True {
			return r
		}
		sb := classify(b)
		switch {
		case sb.kind == shapeQuote:
		case sb.kind == shapeNeutral && (sx.kind == shapeTop || sb.head != sx.head):
		default:
			refutable = false
		}
	}
	if refutable {
		return decided(engine.False)
	}
	return decided(engine.Unknown)
}

// eta compares x v ⊑ y v for a fresh variable v.
func (s *session) eta(hx *term.Term, sx shape, hy *term.Term, sy shape, depth int) result {
	switch {
	case sx.kind == shapeQuote, sy.kind == shapeQuote, sx.kind == shapeOpaque, sy.kind == shapeOpaque:
		return decided(engine.Unknown)
	}
	v := term.NVar(term.Fresh("_v", hx, hy))
	return s.less(term.App(hx, v), term.App(hy, v), depth+1)
}

// neutral compares h a1..an with g b1..bm for free heads h and g.
func (s *session) neutral(sx, sy shape, depth int) result {
	if sx.head != sy.head {
		return decided(engine.False)
	}
	if len(sx.args) != len(sy.args) {
		return decided(engine.Unknown)
	}
	r := decided(engine.True)
	for i := range sx.args {
		a, b := sx.args[i], sy.args[i]
		ri := s.less(a, b, depth+1)
		// Projecting the head onto argument i separates the two sides only
		// when the head does not also occur inside that argument.
		if ri.t == engine.False && (occurs(sx.head, a) || occurs(sx.head, b)) {
			ri = decided(engine.Unknown)
		}
		r = r.and(ri)
		if r.t == engine.False {
			return r
		}
	}
	return r
}

func occurs(head, t *term.Term) bool {
	if head.Kind() == term.KindIVar {
		return term.HasRank(t, head.Rank())
	}
	return t.HasFree(head.Name())
}

// quotes compares codes: {a} ⊑ {b} holds exactly when a ≡ b.
func (s *session) quotes(a, b *term.Term, depth int) result {
	lr := s.less(a, b, depth+1)
	if lr.t == engine.False {
		return lr
	}
	return lr.and(s.less(b, a, depth+1))
}
