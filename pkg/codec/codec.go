// Package codec converts host values to terms and back, driven by a type
// descriptor. Encoding is structural. Decoding reduces the term and then
// asks the order procedures which constructor it equals, so a term of the
// wrong type fails with a TypeError instead of decoding to a wrong value.
package codec

import (
	"context"
	"log/slog"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/order"
	"github.com/vic/skjnet/pkg/term"
)

// Options configure a Codec.
type Options struct {
	// Budget bounds each reduction of a decoded term.
	Budget int
	Logger *slog.Logger
}

const DefaultBudget = 10000

// Codec decodes with an order decider and its engine.
type Codec struct {
	eng    *engine.Engine
	dec    *order.Decider
	budget int
	log    *slog.Logger
}

func New(dec *order.Decider, opts Options) *Codec {
	if opts.Budget == 0 {
		opts.Budget = DefaultBudget
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Codec{
		eng:    dec.Engine(),
		dec:    dec,
		budget: opts.Budget,
		log:    log.With("component", "codec"),
	}
}

// Encoder returns the encoding function of ty.
func Encoder(ty Type) func(v any) (*term.Term, error) {
	return func(v any) (*term.Term, error) {
		return Encode(ty, v)
	}
}

// Decoder returns the decoding function of ty.
func (c *Codec) Decoder(ty Type) func(ctx context.Context, t *term.Term) (any, error) {
	return func(ctx context.Context, t *term.Term) (any, error) {
		return c.Decode(ctx, ty, t)
	}
}

// Encode returns the canonical term of v as a value of ty.
func Encode(ty Type, v any) (*term.Term, error) {
	switch ty.Kind {
	case KindUnit:
		if _, ok := v.(struct{}); !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		return UnitTerm, nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		return BoolTerm(b), nil
	case KindByte:
		b, ok := v.(byte)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		return encodeByte(b), nil
	case KindNum:
		n, ok := v.(int)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		if n < 0 {
			return nil, typeErrorf(ty, "negative number %d", n)
		}
		return NumTerm(n), nil
	case KindBytes:
		bs, ok := v.([]byte)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		t := Nil
		for i := len(bs) - 1; i >= 0; i-- {
			t = Cons(encodeByte(bs[i]), t)
		}
		return t, nil
	case KindProd:
		p, ok := v.(Tuple)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		a, err := Encode(ty.Args[0], p.Fst)
		if err != nil {
			return nil, err
		}
		b, err := Encode(ty.Args[1], p.Snd)
		if err != nil {
			return nil, err
		}
		return Pair(a, b), nil
	case KindSum:
		e, ok := v.(Either)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		if e.Right {
			b, err := Encode(ty.Args[1], e.Value)
			if err != nil {
				return nil, err
			}
			return Inr(b), nil
		}
		a, err := Encode(ty.Args[0], e.Value)
		if err != nil {
			return nil, err
		}
		return Inl(a), nil
	case KindMaybe:
		o, ok := v.(Option)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		if !o.Some {
			return None, nil
		}
		x, err := Encode(ty.Args[0], o.Value)
		if err != nil {
			return nil, err
		}
		return Some(x), nil
	case KindList:
		xs, ok := v.([]any)
		if !ok {
			return nil, typeErrorf(ty, "cannot encode %T", v)
		}
		t := Nil
		for i := len(xs) - 1; i >= 0; i-- {
			h, err := Encode(ty.Args[0], xs[i])
			if err != nil {
				return nil, err
			}
			t = Cons(h, t)
		}
		return t, nil
	}
	return nil, typeErrorf(ty, "unknown kind")
}

// encodeByte is C (.. (C I b7) ..) b0, the function f: f b7 .. b0.
func encodeByte(b byte) *term.Term {
	t := term.I
	for i := 7; i >= 0; i-- {
		t = term.Apply(term.C, t, BoolTerm(b&(1<<i) != 0))
	}
	return t
}

// Decode reduces t and reads it back as a value of ty.
func (c *Codec) Decode(ctx context.Context, ty Type, t *term.Term) (any, error) {
	t, _, ok := c.eng.Reduce(ctx, t, c.budget)
	if !ok {
		c.log.Debug("decode ran out of budget", "type", ty, "term", t)
		return nil, typeErrorf(ty, "no normal form within %d steps", c.budget)
	}
	return c.decode(ctx, ty, t)
}

func (c *Codec) decode(ctx context.Context, ty Type, t *term.Term) (any, error) {
	switch ty.Kind {
	case KindUnit:
		if c.dec.TryCastUnit(ctx, t) != UnitTerm {
			return nil, typeErrorf(ty, "%s is not unit", t)
		}
		return struct{}{}, nil
	case KindBool:
		return c.decodeBool(ctx, ty, t)
	case KindByte:
		return c.decodeByte(ctx, ty, t)
	case KindNum:
		n := 0
		for {
			x, some, err := c.option(ctx, ty, t)
			if err != nil {
				return nil, err
			}
			if !some {
				return n, nil
			}
			n++
			t = x
		}
	case KindBytes:
		var out []byte
		for {
			h, tl, ok, err := c.uncons(ctx, ty, t)
			if err != nil {
				return nil, err
			}
			if !ok {
				return out, nil
			}
			b, err := c.decodeByte(ctx, Byte, h)
			if err != nil {
				return nil, err
			}
			out = append(out, b)
			t = tl
		}
	case KindProd:
		_, args, err := c.destruct(ctx, ty, t, 1, 2)
		if err != nil {
			return nil, err
		}
		a, err := c.decode(ctx, ty.Args[0], args[0])
		if err != nil {
			return nil, err
		}
		b, err := c.decode(ctx, ty.Args[1], args[1])
		if err != nil {
			return nil, err
		}
		return Tuple{Fst: a, Snd: b}, nil
	case KindSum:
		i, args, err := c.destruct(ctx, ty, t, 2, 1, 1)
		if err != nil {
			return nil, err
		}
		v, err := c.decode(ctx, ty.Args[i], args[0])
		if err != nil {
			return nil, err
		}
		return Either{Right: i == 1, Value: v}, nil
	case KindMaybe:
		x, some, err := c.option(ctx, ty, t)
		if err != nil || !some {
			return Option{}, err
		}
		v, err := c.decode(ctx, ty.Args[0], x)
		if err != nil {
			return nil, err
		}
		return Option{Some: true, Value: v}, nil
	case KindList:
		out := []any{}
		for {
			h, tl, ok, err := c.uncons(ctx, ty, t)
			if err != nil {
				return nil, err
			}
			if !ok {
				return out, nil
			}
			v, err := c.decode(ctx, ty.Args[0], h)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
			t = tl
		}
	}
	return nil, typeErrorf(ty, "unknown kind")
}

func (c *Codec) decodeBool(ctx context.Context, ty Type, t *term.Term) (bool, error) {
	switch c.dec.TryCastBool(ctx, t) {
	case True:
		return true, nil
	case False:
		return false, nil
	}
	return false, typeErrorf(ty, "%s is not a boolean", t)
}

func (c *Codec) decodeByte(ctx context.Context, ty Type, t *term.Term) (byte, error) {
	_, bits, err := c.destruct(ctx, ty, t, 1, 8)
	if err != nil {
		return 0, err
	}
	var b byte
	for _, bit := range bits {
		v, err := c.decodeBool(ctx, ty, bit)
		if err != nil {
			return 0, err
		}
		b <<= 1
		if v {
			b |= 1
		}
	}
	return b, nil
}

// option reads None or Some x through the optional cast.
func (c *Codec) option(ctx context.Context, ty Type, t *term.Term) (*term.Term, bool, error) {
	r := c.dec.TryCastMaybe(ctx, t)
	switch {
	case r == None:
		return nil, false, nil
	case r == nil, r == term.BOT, r == term.TOP:
		return nil, false, typeErrorf(ty, "%s is not optional", t)
	}
	// r is K (C I x).
	_, args := r.Arg().Spine()
	return args[1], true, nil
}

// uncons reads Nil or Cons h t.
func (c *Codec) uncons(ctx context.Context, ty Type, t *term.Term) (h, tl *term.Term, ok bool, err error) {
	i, args, err := c.destruct(ctx, ty, t, 2, 0, 2)
	if err != nil || i == 0 {
		return nil, nil, false, err
	}
	return args[0], args[1], true, nil
}

// destruct applies t to one continuation per constructor, where arity[i]
// is the field count of constructor i, and returns the constructor called
// and its fields.
func (c *Codec) destruct(ctx context.Context, ty Type, t *term.Term, n int, arity ...int) (int, []*term.Term, error) {
	vars := make([]*term.Term, n)
	avoid := []*term.Term{t}
	for i := range vars {
		vars[i] = term.NVar(term.Fresh("_k", avoid...))
		avoid = append(avoid, vars[i])
	}
	h, _, ok := c.eng.HeadNormalize(ctx, term.Apply(t, vars...), c.budget)
	if !ok {
		return 0, nil, typeErrorf(ty, "%s has no head normal form within %d steps", t, c.budget)
	}
	head, args := h.Spine()
	for i, v := range vars {
		if head != v {
			continue
		}
		if len(args) != arity[i] {
			break
		}
		for _, a := range args {
			for _, w := range vars {
				if a.HasFree(w.Name()) {
					return 0, nil, typeErrorf(ty, "%s does not match a constructor", t)
				}
			}
		}
		return i, args, nil
	}
	return 0, nil, typeErrorf(ty, "%s does not match a constructor", t)
}
