package engine

import "github.com/vic/skjnet/pkg/term"

// Simplify applies the rules that never duplicate a subterm (I, K, B, C, J,
// TOP, BOT, join distribution and the quote rules) everywhere in t. It
// always terminates and needs no budget.
func (e *Engine) Simplify(t *term.Term) *term.Term {
	e.mu.Lock()
	s, ok := e.simpMemo[t]
	e.mu.Unlock()
	if ok {
		return s
	}
	s = e.simplify(t)
	e.mu.Lock()
	e.simpMemo[t] = s
	e.mu.Unlock()
	return s
}

func (e *Engine) simplify(t *term.Term) *term.Term {
	switch t.Kind() {
	case term.KindJoin:
		branches := t.JoinTerms()
		for i, b := range branches {
			branches[i] = e.Simplify(b)
		}
		return term.JoinAll(branches...)
	case term.KindAbs:
		return term.Abs(e.Simplify(t.Body()))
	case term.KindQuote:
		return term.Quote(e.Simplify(t.Body()))
	case term.KindFun:
		return term.Fun(t.Var(), e.Simplify(t.Body()))
	case term.KindLet:
		return term.Let(t.Var(), e.Simplify(t.Defn()), e.Simplify(t.Body()))
	case term.KindApp:
		head, args := t.Spine()
		head, args = respine(e.Simplify(head), args)
		for i, a := range args {
			args[i] = e.Simplify(a)
		}
		return e.applyLinear(head, args)
	}
	return t
}

// respine splits t into head and arguments and appends rest.
func respine(t *term.Term, rest []*term.Term) (*term.Term, []*term.Term) {
	head, args := t.Spine()
	return head, append(args, rest...)
}

// applyLinear applies simplified args to a simplified head, firing linear
// rules at the head until none applies.
func (e *Engine) applyLinear(head *term.Term, args []*term.Term) *term.Term {
	for {
		n := len(args)
		if n == 0 {
			return head
		}
		switch head.Kind() {
		case term.KindJoin:
			branches := head.JoinTerms()
			for i, b := range branches {
				h, a := respine(b, args)
				branches[i] = e.applyLinear(h, a)
			}
			return term.JoinAll(branches...)
		case term.KindAtom:
		default:
			return term.Apply(head, args...)
		}

		switch {
		case head == term.TOP || head == term.BOT:
			return head
		case head == term.I:
			head, args = respine(args[0], args[1:])
		case head == term.K && n >= 2:
			head, args = respine(args[0], args[2:])
		case head == term.B && n >= 3:
			yz := e.Simplify(term.App(args[1], args[2]))
			head, args = respine(args[0], append([]*term.Term{yz}, args[3:]...))
		case head == term.C && n >= 3:
			head, args = respine(args[0], append([]*term.Term{args[2], args[1]}, args[3:]...))
		case head == term.J && n >= 2:
			head, args = respine(term.Join(args[0], args[1]), args[2:])
		case head == term.EVAL && args[0].Kind() == term.KindQuote:
			head, args = respine(args[0].Body(), args[1:])
		case head == term.QQUOTE && args[0].Kind() == term.KindQuote:
			head, args = term.Quote(args[0]), args[1:]
		case head == term.QAPP && n >= 2 && args[0].Kind() == term.KindQuote && args[1].Kind() == term.KindQuote:
			q := term.Quote(e.Simplify(term.App(args[0].Body(), args[1].Body())))
			head, args = q, args[2:]
		default:
			return term.Apply(head, args...)
		}
	}
}
