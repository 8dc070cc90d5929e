// Package termgen generates pseudo-random terms from a seed, so that laws
// can be checked on many terms while failures stay reproducible.
package termgen

import (
	"math/rand"

	"github.com/vic/skjnet/pkg/term"
)

// Options shapes the generated terms. The zero value gives combinator terms
// over TOP, BOT, I, K, B, C, S, J and the variables x, y and z.
type Options struct {
	// Depth bounds the nesting of the terms. Zero means 4.
	Depth int
	Vars  []string
	Atoms []*term.Term

	Abs     bool
	Named   bool // FUN and LET
	Quotes  bool
	Indices bool // free de Bruijn indices
}

// Generator is not safe for concurrent use.
type Generator struct {
	r    *rand.Rand
	opts Options
}

// New returns a generator seeded with seed.
func New(seed int64, opts Options) *Generator {
	if opts.Depth <= 0 {
		opts.Depth = 4
	}
	if len(opts.Vars) == 0 {
		opts.Vars = []string{"x", "y", "z"}
	}
	if len(opts.Atoms) == 0 {
		opts.Atoms = []*term.Term{term.TOP, term.BOT, term.I, term.K, term.B, term.C, term.S, term.J}
	}
	return &Generator{r: rand.New(rand.NewSource(seed)), opts: opts}
}

// Term returns the next term.
func (g *Generator) Term() *term.Term {
	return g.gen(g.opts.Depth, 0)
}

// Terms returns the next n terms.
func (g *Generator) Terms(n int) []*term.Term {
	out := make([]*term.Term, n)
	for i := range out {
		out[i] = g.Term()
	}
	return out
}

type shape int

const (
	shapeApp shape = iota
	shapeJoin
	shapeAbs
	shapeFun
	shapeLet
	shapeQuote
)

// gen builds a term of at most depth levels under bound ABS binders.
func (g *Generator) gen(depth int, bound uint32) *term.Term {
	if depth <= 1 || g.r.Intn(4) == 0 {
		return g.leaf(bound)
	}
	shapes := []shape{shapeApp, shapeApp, shapeApp, shapeJoin}
	if g.opts.Abs {
		shapes = append(shapes, shapeAbs)
	}
	if g.opts.Named {
		shapes = append(shapes, shapeFun, shapeLet)
	}
	if g.opts.Quotes {
		shapes = append(shapes, shapeQuote)
	}
	d := depth - 1
	switch shapes[g.r.Intn(len(shapes))] {
	case shapeJoin:
		return term.Join(g.gen(d, bound), g.gen(d, bound))
	case shapeAbs:
		return term.Abs(g.gen(d, bound+1))
	case shapeFun:
		return term.Fun(g.variable(), g.gen(d, bound))
	case shapeLet:
		return term.Let(g.variable(), g.gen(d, bound), g.gen(d, bound))
	case shapeQuote:
		return term.Quote(g.gen(d, bound))
	}
	return term.App(g.gen(d, bound), g.gen(d, bound))
}

func (g *Generator) leaf(bound uint32) *term.Term {
	switch n := g.r.Intn(10); {
	case bound > 0 && n < 3:
		return term.IVar(uint32(g.r.Intn(int(bound))))
	case g.opts.Indices && n == 3:
		return term.IVar(bound + uint32(g.r.Intn(3)))
	case n < 6:
		return g.variable()
	}
	return g.opts.Atoms[g.r.Intn(len(g.opts.Atoms))]
}

func (g *Generator) variable() *term.Term {
	return term.NVar(g.opts.Vars[g.r.Intn(len(g.opts.Vars))])
}
