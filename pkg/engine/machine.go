package engine

import (
	"context"
	"sync/atomic"

	"github.com/vic/skjnet/pkg/compiler"
	"github.com/vic/skjnet/pkg/term"
)

type mode int

const (
	modeFull mode = iota // normal form: reduce under binders and in arguments
	modeHead             // head normal form: stop once the head is exposed
)

type machine struct {
	e         *Engine
	ctx       context.Context
	mode      mode
	budget    int
	rank      int
	exhausted bool
}

func (e *Engine) newMachine(ctx context.Context, budget int, mode mode) *machine {
	if budget < 0 {
		budget = Unbounded
	}
	return &machine{e: e, ctx: ctx, mode: mode, budget: budget}
}

// spend charges one rule firing. It fails once the budget is used up.
func (m *machine) spend(r Rule) bool {
	if m.budget == 0 {
		m.exhausted = true
		return false
	}
	if m.budget > 0 {
		m.budget--
	}
	m.e.count(r)
	return true
}

// tooComplex reports a freshly built term above the complexity limit and
// marks the machine exhausted.
func (m *machine) tooComplex(t *term.Term) bool {
	if m.e.opts.MaxComplexity > 0 && t.Complexity() > m.e.opts.MaxComplexity {
		m.exhausted = true
		return true
	}
	return false
}

// normalize returns the normal form of t, consulting the memo table.
func (m *machine) normalize(t *term.Term) *term.Term {
	if nf, ok := m.e.lookup(t); ok {
		return nf
	}
	outer := m.exhausted
	m.exhausted = false
	saved := m.mode
	m.mode = modeFull
	nf := m.run(t, nil)
	m.mode = saved
	if !m.exhausted {
		m.e.store(t, nf)
	}
	m.exhausted = m.exhausted || outer
	return nf
}

// headNormal reduces t to head normal form without leaving the current mode.
func (m *machine) headNormal(t *term.Term) *term.Term {
	saved := m.mode
	m.mode = modeHead
	h := m.run(t, nil)
	m.mode = saved
	return h
}

func (m *machine) rebuild(code *term.Term, stack *Stack) *term.Term {
	return term.Apply(code, stack.Args(m.rank)...)
}

// run drives the machine from code applied to stack.
func (m *machine) run(code *term.Term, stack *Stack) *term.Term {
	for {
		for code.Kind() == term.KindApp {
			stack = stack.Push(code.Arg(), m.rank)
			code = code.Fun()
		}
		switch code.Kind() {
		case term.KindAtom:
			next, rest, fired := m.step(code, stack)
			if fired {
				code, stack = next, rest
				continue
			}
			if m.exhausted {
				return m.rebuild(code, stack)
			}
			// step may have replaced arguments by their head normal forms.
			return m.stuck(code, rest)

		case term.KindJoin:
			if stack.Len() > 0 && !m.spend(RuleJoin) {
				return m.rebuild(code, stack)
			}
			branches := code.JoinTerms()
			for i, b := range branches {
				branches[i] = m.run(b, stack)
			}
			return term.JoinAll(branches...)

		case term.KindAbs:
			if stack.Len() == 0 {
				return m.value(code)
			}
			if !m.spend(RuleBeta) {
				return m.rebuild(code, stack)
			}
			arg, rest := stack.Pop(m.rank)
			next := term.Subst(code.Body(), arg)
			if m.tooComplex(next) {
				return m.rebuild(code, stack)
			}
			code, stack = next, rest

		case term.KindFun:
			if stack.Len() == 0 {
				if m.mode == modeHead {
					return code
				}
				return term.Fun(code.Var(), m.normalize(code.Body()))
			}
			if !m.spend(RuleBeta) {
				return m.rebuild(code, stack)
			}
			var arg *term.Term
			arg, stack = stack.Pop(m.rank)
			code = term.SubstVar(code.Body(), code.Var().Name(), arg)

		case term.KindLet:
			if !m.spend(RuleBeta) {
				return m.rebuild(code, stack)
			}
			code = term.SubstVar(code.Body(), code.Var().Name(), code.Defn())

		default:
			return m.neutral(code, stack)
		}
	}
}

// step fires the rule of an atom head. When it does not fire it returns the
// stack to continue with, where reflective atoms may have had their
// arguments head normalized.
func (m *machine) step(code *term.Term, stack *Stack) (*term.Term, *Stack, bool) {
	n := stack.Len()
	switch code {
	case term.TOP, term.BOT:
		if n == 0 || !m.spend(RuleAbsorb) {
			return code, stack, false
		}
		return code, nil, true
	}
	if code.Arity() == 0 || n < code.Arity() {
		return code, stack, false
	}
	if code.IsReflective() {
		return m.reflect(code, stack)
	}

	var rule Rule
	switch code {
	case term.I:
		rule = RuleI
	case term.K:
		rule = RuleK
	case term.B:
		rule = RuleB
	case term.C:
		rule = RuleC
	case term.S:
		rule = RuleS
	case term.J:
		rule = RuleJ
	}
	if !m.spend(rule) {
		return code, stack, false
	}
	x, rest := stack.Pop(m.rank)
	switch code {
	case term.I:
		return x, rest, true
	case term.K:
		_, rest = rest.Pop(m.rank)
		return x, rest, true
	case term.J:
		y, rest := rest.Pop(m.rank)
		return term.Join(x, y), rest, true
	}
	y, rest := rest.Pop(m.rank)
	z, rest := rest.Pop(m.rank)
	switch code {
	case term.B:
		yz := term.App(y, z)
		if m.tooComplex(yz) {
			return code, stack, false
		}
		return x, rest.Push(yz, m.rank), true
	case term.C:
		return x, rest.Push(y, m.rank).Push(z, m.rank), true
	default: // S
		yz := term.App(y, z)
		if m.tooComplex(yz) {
			return code, stack, false
		}
		return x, rest.Push(yz, m.rank).Push(z, m.rank), true
	}
}

// reflect fires EVAL, QQUOTE, QAPP, LESS and EQUAL once their arguments
// head normalize to quotes.
func (m *machine) reflect(code *term.Term, stack *Stack) (*term.Term, *Stack, bool) {
	arity := code.Arity()
	args := make([]*term.Term, arity)
	rest := stack
	for i := range args {
		args[i], rest = rest.Pop(m.rank)
		args[i] = m.headNormal(args[i])
	}
	// Keep the head normal forms so stuck terms do not redo the work.
	hnfs := rest
	for i := arity - 1; i >= 0; i-- {
		hnfs = hnfs.Push(args[i], m.rank)
	}
	for _, a := range args {
		if a.Kind() != term.KindQuote {
			return code, hnfs, false
		}
	}

	var result *term.Term
	var rule Rule
	switch code {
	case term.EVAL:
		rule, result = RuleEval, args[0].Body()
	case term.QQUOTE:
		rule, result = RuleQQuote, term.Quote(args[0])
	case term.QAPP:
		rule, result = RuleQApp, term.Quote(term.App(args[0].Body(), args[1].Body()))
	case term.LESS, term.EQUAL:
		oracle := m.e.getOracle()
		if oracle == nil {
			return code, hnfs, false
		}
		var answer Truth
		if code == term.LESS {
			rule = RuleLess
			answer = oracle.TryDecideLess(m.ctx, args[0].Body(), args[1].Body())
		} else {
			rule = RuleEqual
			answer = oracle.TryDecideEqual(m.ctx, args[0].Body(), args[1].Body())
		}
		switch answer {
		case True:
			result = term.K
		case False:
			result = term.App(term.K, term.I)
		default:
			return code, hnfs, false
		}
	default:
		return code, hnfs, false
	}
	if !m.spend(rule) {
		return code, hnfs, false
	}
	return result, rest, true
}

// stuck finishes an atom head that cannot fire.
func (m *machine) stuck(code *term.Term, stack *Stack) *term.Term {
	partial := code.Arity() > 0 && stack.Len() < code.Arity()
	if partial && m.mode == modeFull {
		if nf, ok := m.etaNormal(code, stack); ok {
			return nf
		}
		return m.eta(code, stack)
	}
	return m.neutral(code, stack)
}

// etaNormal finishes I, K and K a without expanding them, since their
// expansion only fires the rule that abstraction undoes. K TOP and K BOT
// collapse as abstraction would collapse them.
func (m *machine) etaNormal(code *term.Term, stack *Stack) (*term.Term, bool) {
	switch {
	case stack.Len() == 0 && (code == term.I || code == term.K):
		return code, true
	case stack.Len() == 1 && code == term.K:
		a := m.normalize(stack.Args(m.rank)[0])
		if a == term.TOP || a == term.BOT {
			return a, true
		}
		return term.App(term.K, a), true
	}
	return nil, false
}

// eta normalizes a partial application f by normalizing f applied to a fresh
// variable under one more binder and abstracting that variable again.
func (m *machine) eta(code *term.Term, stack *Stack) *term.Term {
	if m.budget == 0 {
		m.exhausted = true
		return m.rebuild(code, stack)
	}
	atomic.AddUint64(&m.e.eta, 1)
	m.rank++
	body := m.run(code, stack.Append(term.IVar(0), m.rank))
	m.rank--
	return m.abstract(body)
}

// value normalizes an ABS that has no argument.
func (m *machine) value(code *term.Term) *term.Term {
	if m.mode == modeHead {
		return code
	}
	m.rank++
	body := m.normalize(code.Body())
	m.rank--
	return m.abstract(body)
}

func (m *machine) abstract(body *term.Term) *term.Term {
	t, err := compiler.AbstractRank0(body)
	if err != nil {
		return term.Abs(body)
	}
	return t
}

// neutral rebuilds a head that no rule applies to. Full mode normalizes the
// arguments and quoted bodies, head mode only simplifies the arguments.
func (m *machine) neutral(code *term.Term, stack *Stack) *term.Term {
	args := stack.Args(m.rank)
	if m.mode == modeHead {
		for i, a := range args {
			args[i] = m.e.Simplify(a)
		}
		return term.Apply(code, args...)
	}
	if code.Kind() == term.KindQuote {
		code = term.Quote(m.normalize(code.Body()))
	}
	for i, a := range args {
		args[i] = m.normalize(a)
	}
	return term.Apply(code, args...)
}
