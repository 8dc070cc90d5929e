package order

import "github.com/vic/skjnet/pkg/term"

type shapeKind int

const (
	shapeOpaque  shapeKind = iota // undecidable here: type atoms, stuck reflection
	shapeTop                      // TOP
	shapeBot                      // BOT
	shapeJoin                     // a join of head normal forms
	shapeLambda                   // a function: partial combinator or binder
	shapeNeutral                  // a free variable applied to arguments
	shapeQuote                    // a code
)

type shape struct {
	kind shapeKind
	head *term.Term
	args []*term.Term
}

// classify describes a head normal form.
func classify(h *term.Term) shape {
	switch h {
	case term.TOP:
		return shape{kind: shapeTop}
	case term.BOT:
		return shape{kind: shapeBot}
	}
	switch h.Kind() {
	case term.KindJoin:
		return shape{kind: shapeJoin}
	case term.KindQuote:
		return shape{kind: shapeQuote}
	case term.KindAbs, term.KindFun, term.KindLet:
		return shape{kind: shapeLambda}
	}
	head, args := h.Spine()
	switch head.Kind() {
	case term.KindNVar, term.KindIVar:
		return shape{kind: shapeNeutral, head: head, args: args}
	case term.KindAtom:
		if arity := head.Arity(); arity > 0 && len(args) < arity {
			return shape{kind: shapeLambda, head: head, args: args}
		}
	}
	return shape{kind: shapeOpaque, head: head, args: args}
}
