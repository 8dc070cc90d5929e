package order

import (
	"context"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/term"
)

var (
	unitI   = term.I
	boolT   = term.K
	boolF   = term.App(term.K, term.I)
	maybeNo = term.K
)

func maybeSome(x *term.Term) *term.Term {
	return term.App(term.K, term.Apply(term.C, term.I, x))
}

// observe head normalizes t applied to fresh variables and returns the result
// with the variables, or nil when the budget runs out.
func (d *Decider) observe(ctx context.Context, t *term.Term, n int) (*term.Term, []*term.Term) {
	vars := make([]*term.Term, n)
	avoid := []*term.Term{t}
	for i := range vars {
		vars[i] = term.NVar(term.Fresh("_p", avoid...))
		avoid = append(avoid, vars[i])
	}
	h, _, ok := d.eng.HeadNormalize(ctx, term.Apply(t, vars...), d.opts.Budget)
	if !ok {
		return nil, vars
	}
	return h, vars
}

// extreme returns BOT or TOP when t head normalizes to it.
func (d *Decider) extreme(ctx context.Context, t *term.Term) *term.Term {
	h, _, ok := d.eng.HeadNormalize(ctx, t, d.opts.Budget)
	if ok && (h == term.BOT || h == term.TOP) {
		return h
	}
	return nil
}

// castBy returns the first representative decided equal to t.
func (d *Decider) castBy(ctx context.Context, t *term.Term, reps ...*term.Term) *term.Term {
	for _, r := range reps {
		if d.TryDecideEqual(ctx, t, r) == engine.True {
			return r
		}
	}
	return nil
}

// TryCastUnit returns the unit value equal to t, one of BOT, I and TOP, or
// nil when t is not decided to be one of them.
func (d *Decider) TryCastUnit(ctx context.Context, t *term.Term) *term.Term {
	if e := d.extreme(ctx, t); e != nil {
		return e
	}
	if h, vars := d.observe(ctx, t, 1); h == vars[0] {
		return unitI
	}
	return d.castBy(ctx, t, unitI)
}

// TryCastBool returns the boolean equal to t: BOT, K (true), K I (false) or
// TOP, or nil.
func (d *Decider) TryCastBool(ctx context.Context, t *term.Term) *term.Term {
	if e := d.extreme(ctx, t); e != nil {
		return e
	}
	h, vars := d.observe(ctx, t, 2)
	switch h {
	case vars[0]:
		return boolT
	case vars[1]:
		return boolF
	}
	return d.castBy(ctx, t, boolT, boolF)
}

// TryCastMaybe returns the optional value equal to t: BOT, TOP, K (none) or
// K (C I x) for some x, or nil.
func (d *Decider) TryCastMaybe(ctx context.Context, t *term.Term) *term.Term {
	if e := d.extreme(ctx, t); e != nil {
		return e
	}
	h, vars := d.observe(ctx, t, 2)
	if h == nil {
		return nil
	}
	if h == vars[0] {
		return maybeNo
	}
	head, args := h.Spine()
	if head == vars[1] && len(args) == 1 {
		x := args[0]
		if !x.HasFree(vars[0].Name()) && !x.HasFree(vars[1].Name()) {
			nf, _, _ := d.eng.Reduce(ctx, x, d.opts.Budget)
			return maybeSome(nf)
		}
	}
	return d.castBy(ctx, t, maybeNo)
}

// TryCastCode returns the quote equal to t, with its body normalized, or
// BOT, TOP or nil.
func (d *Decider) TryCastCode(ctx context.Context, t *term.Term) *term.Term {
	h, _, ok := d.eng.HeadNormalize(ctx, t, d.opts.Budget)
	if !ok {
		return nil
	}
	switch {
	case h == term.BOT, h == term.TOP:
		return h
	case h.Kind() == term.KindQuote:
		body, _, _ := d.eng.Reduce(ctx, h.Body(), d.opts.Budget)
		return term.Quote(body)
	}
	return nil
}
