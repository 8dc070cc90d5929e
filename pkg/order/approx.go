package order

import (
	"context"

	"github.com/vic/skjnet/pkg/compiler"
	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/term"
)

// Approximate returns the finite approximant of t that unfolds depth levels
// of its head normal forms and puts fill, BOT or TOP, wherever it stops.
// With fill BOT the result is below t, with fill TOP above it.
func (d *Decider) Approximate(ctx context.Context, t *term.Term, depth int, fill *term.Term) *term.Term {
	s := d.newSession(ctx, false)
	return s.approximant(t, depth, fill)
}

func (s *session) approximant(t *term.Term, depth int, fill *term.Term) *term.Term {
	if depth <= 0 {
		return fill
	}
	t = s.d.eng.Simplify(t)
	if t.Kind() == term.KindJoin {
		return s.approxBranches(t.JoinTerms(), depth, fill)
	}
	h, ok := s.hnf(t)
	if !ok {
		return fill
	}
	sh := classify(h)
	switch sh.kind {
	case shapeTop, shapeBot, shapeQuote:
		return h
	case shapeJoin:
		return s.approxBranches(h.JoinTerms(), depth, fill)
	case shapeNeutral:
		args := make([]*term.Term, len(sh.args))
		for i, a := range sh.args {
			args[i] = s.approximant(a, depth-1, fill)
		}
		return term.Apply(sh.head, args...)
	case shapeLambda:
		v := term.NVar(term.Fresh("_a", h))
		body := s.approximant(term.App(h, v), depth-1, fill)
		f, err := compiler.Abstract(v, body)
		if err != nil {
			return fill
		}
		return f
	}
	return fill
}

func (s *session) approxBranches(branches []*term.Term, depth int, fill *term.Term) *term.Term {
	out := make([]*term.Term, len(branches))
	for i, b := range branches {
		out[i] = s.approximant(b, depth, fill)
	}
	return term.JoinAll(out...)
}

// approximate decides x ⊑ y from finite approximants: lower(x) ⊑ x and
// y ⊑ upper(y), so lower(x) ⋢ upper(y) refutes it, and
// upper(x) ⊑ lower(y) proves it. Approximants are compared by a session
// that does not approximate again.
func (s *session) approximate(x, y *term.Term) engine.Truth {
	depth := s.d.opts.ApproxDepth
	finite := s.d.newSession(s.ctx, false)
	lessFinite := func(a, b *term.Term) engine.Truth {
		return finite.less(a, b, 0).t
	}

	lowerX := s.frontier(s.approximants(x, depth, term.BOT), lessFinite, true)
	upperY := s.frontier(s.approximants(y, depth, term.TOP), lessFinite, false)
	for _, l := range lowerX {
		for _, u := range upperY {
			if lessFinite(l, u) == engine.False {
				s.d.log.Debug("refuted by approximants", "lower", l, "upper", u)
				return engine.False
			}
		}
	}

	upperX := s.frontier(s.approximants(x, depth, term.TOP), lessFinite, false)
	lowerY := s.frontier(s.approximants(y, depth, term.BOT), lessFinite, true)
	for _, u := range upperX {
		for _, l := range lowerY {
			if lessFinite(u, l) == engine.True {
				s.d.log.Debug("proved by approximants", "upper", u, "lower", l)
				return engine.True
			}
		}
	}
	return engine.Unknown
}

type approximantTask struct {
	t     *term.Term
	depth int
}

func (s *session) approximants(t *term.Term, maxDepth int, fill *term.Term) []approximantTask {
	out := make([]approximantTask, 0, maxDepth)
	for d := 1; d <= maxDepth; d++ {
		out = append(out, approximantTask{s.approximant(t, d, fill), d})
	}
	return out
}

// frontier keeps the most informative approximants: the maximal lower
// approximants, or the minimal upper ones. Deeper approximants are tried
// later so that a shallow one dominating them saves the comparisons.
func (s *session) frontier(tasks []approximantTask, lessFinite func(a, b *term.Term) engine.Truth, lower bool) []*term.Term {
	above := func(a, b *term.Term) bool {
		return lessFinite(b, a) == engine.True && lessFinite(a, b) == engine.False
	}
	dominates := func(a, b *term.Term) bool {
		if lower {
			return above(a, b)
		}
		return above(b, a)
	}
	sched := engine.NewScheduler(dominates)
	for _, task := range tasks {
		sched.Push(task.t, task.depth)
	}
	var out []*term.Term
	for len(out) < s.d.opts.MaxFrontier {
		t, ok := sched.Pop()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out
}
