package bohm

import "strings"

// goal asks whether two patterns over shared parameters denote equal (or,
// for DecideLess, ordered) trees. Parameters are numbered by first
// occurrence, left then right, so equal questions have equal keys.
type goal struct {
	lhs, rhs Pattern
	vars     int
}

func newGoal(lhs, rhs Pattern) goal {
	renum := make(map[int]int)
	rename := func(p Pattern) Pattern {
		out := Pattern{Head: p.Head, Args: make([]int, len(p.Args))}
		for i, a := range p.Args {
			n, ok := renum[a]
			if !ok {
				n = len(renum)
				renum[a] = n
			}
			out.Args[i] = n
		}
		return out
	}
	l := rename(lhs)
	r := rename(rhs)
	return goal{lhs: l, rhs: r, vars: len(renum)}
}

func (g goal) key() string {
	var sb strings.Builder
	sb.WriteString(g.lhs.String())
	sb.WriteString(" = ")
	sb.WriteString(g.rhs.String())
	return sb.String()
}

// tree is one unfolding of a pattern: Head applied to Args, or Bot.
type tree struct {
	head int
	args []Pattern
}

// unfold applies the equation of p to its arguments and then to fresh
// parameters, so that both sides of a goal take the same number.
func (p *Presentation) unfold(pat Pattern, fresh []int) (tree, error) {
	c, err := p.equation(pat.Head)
	if err != nil {
		return tree{}, err
	}
	missing := c.Bound - len(pat.Args)
	params := append(append([]int(nil), pat.Args...), fresh[:missing]...)
	if c.Body.Head == Bot {
		return tree{head: Bot}, nil
	}
	t := tree{head: params[c.Body.Head]}
	for _, a := range c.Body.Args {
		q := Pattern{Head: a.Head, Args: make([]int, len(a.Args))}
		for i, j := range a.Args {
			q.Args[i] = params[j]
		}
		t.args = append(t.args, q)
	}
	for _, z := range fresh[missing:] {
		t.args = append(t.args, Pattern{Head: Identity, Args: []int{z}})
	}
	return t, nil
}

// match eta expands both sides of g to equal arity and compares one level.
// It returns the argument goals, or ok false on a mismatch.
func (p *Presentation) match(g goal, less bool) (sub []goal, ok bool, err error) {
	cl, err := p.equation(g.lhs.Head)
	if err != nil {
		return nil, false, err
	}
	cr, err := p.equation(g.rhs.Head)
	if err != nil {
		return nil, false, err
	}
	expand := max(cl.Bound-len(g.lhs.Args), cr.Bound-len(g.rhs.Args), 0)
	fresh := make([]int, expand)
	for i := range fresh {
		fresh[i] = g.vars + i
	}

	tl, err := p.unfold(g.lhs, fresh)
	if err != nil {
		return nil, false, err
	}
	tr, err := p.unfold(g.rhs, fresh)
	if err != nil {
		return nil, false, err
	}
	switch {
	case tl.head == Bot:
		return nil, less || tr.head == Bot, nil
	case tr.head == Bot:
		return nil, false, nil
	case tl.head != tr.head || len(tl.args) != len(tr.args):
		return nil, false, nil
	}
	for i := range tl.args {
		sub = append(sub, newGoal(tl.args[i], tr.args[i]))
	}
	return sub, true, nil
}

// DecideEqual decides whether two names present the same tree up to eta.
// Pairs under comparison are hypotheses: every pair reachable from the
// first is checked once, and the answer is true when none mismatches.
// Nondeterministic names fail with ErrNondeterministic.
func (p *Presentation) DecideEqual(a, b string) (bool, error) {
	return p.decide(a, b, false)
}

// DecideLess decides a ⊑ b, where an undefined subtree is below anything.
func (p *Presentation) DecideLess(a, b string) (bool, error) {
	return p.decide(a, b, true)
}

func (p *Presentation) decide(a, b string, less bool) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	hyp := []goal{newGoal(Pattern{Head: a}, Pattern{Head: b})}
	done := make(map[string]bool)
	for len(hyp) > 0 {
		g := hyp[len(hyp)-1]
		hyp = hyp[:len(hyp)-1]
		k := g.key()
		if done[k] {
			continue
		}
		done[k] = true

		sub, ok, err := p.match(g, less)
		if err != nil {
			return false, err
		}
		if !ok {
			p.log.Debug("mismatch", "goal", k, "checked", len(done))
			return false, nil
		}
		hyp = append(hyp, sub...)
	}
	p.log.Debug("bisimulation closed", "lhs", a, "rhs", b, "pairs", len(done))
	return true, nil
}
