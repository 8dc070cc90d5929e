// Package engine normalizes terms of the SKJ calculus. Reduction runs a
// continuation machine over (code, stack, rank) with an explicit budget:
// every fired rule costs one unit and running out returns the current state
// as a valid, possibly non-normal term.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vic/skjnet/pkg/compiler"
	"github.com/vic/skjnet/pkg/term"
)

// Unbounded is a budget that never runs out.
const Unbounded = -1

// Rule identifies a reduction rule.
type Rule int

const (
	RuleI Rule = iota
	RuleK
	RuleB
	RuleC
	RuleS
	RuleJ
	RuleAbsorb // TOP or BOT applied to arguments
	RuleJoin   // join distributed over arguments
	RuleBeta   // ABS or FUN applied to an argument
	RuleEval
	RuleQQuote
	RuleQApp
	RuleLess
	RuleEqual
	numRules
)

var ruleNames = [numRules]string{
	"I", "K", "B", "C", "S", "J", "absorb", "join", "beta",
	"eval", "qquote", "qapp", "less", "equal",
}

func (r Rule) String() string {
	if r < 0 || r >= numRules {
		return "unknown"
	}
	return ruleNames[r]
}

// Oracle answers the order questions asked by LESS and EQUAL.
type Oracle interface {
	TryDecideLess(ctx context.Context, x, y *term.Term) Truth
	TryDecideEqual(ctx context.Context, x, y *term.Term) Truth
}

// Options configure an Engine.
type Options struct {
	// MaxComplexity stops reduction of any code whose complexity exceeds it,
	// as if the budget were exhausted. Zero disables the limit.
	MaxComplexity int
	// Memoize caches completed normal forms by term identity.
	Memoize bool
	// Metrics enables prometheus counters.
	Metrics bool
	// Oracle decides LESS and EQUAL. Without one they never fire.
	Oracle Oracle
	Logger *slog.Logger
}

// Stats holds reduction statistics.
type Stats struct {
	TotalSteps uint64
	I          uint64
	K          uint64
	B          uint64
	C          uint64
	S          uint64
	J          uint64
	Absorb     uint64
	Join       uint64
	Beta       uint64
	Reflect    uint64
	Eta        uint64
	Exhausted  uint64
	MemoHits   uint64
}

// Engine reduces terms. It is safe for concurrent use; the memo tables are
// guarded by a single mutex and only ever hold pure results.
type Engine struct {
	opts   Options
	log    *slog.Logger
	oracle atomic.Value // oracleBox

	mu       sync.Mutex
	memo     map[*term.Term]*term.Term
	simpMemo map[*term.Term]*term.Term

	steps     [numRules]uint64
	eta       uint64
	exhausted uint64
	memoHits  uint64
}

type oracleBox struct{ Oracle }

// New returns an Engine.
func New(opts Options) *Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	e := &Engine{
		opts:     opts,
		log:      log.With("component", "engine"),
		memo:     make(map[*term.Term]*term.Term),
		simpMemo: make(map[*term.Term]*term.Term),
	}
	e.oracle.Store(oracleBox{opts.Oracle})
	return e
}

// SetOracle installs the decision procedure used by LESS and EQUAL.
func (e *Engine) SetOracle(o Oracle) {
	e.oracle.Store(oracleBox{o})
}

func (e *Engine) getOracle() Oracle {
	return e.oracle.Load().(oracleBox).Oracle
}

// Reduce normalizes t with the given budget and returns the result with the
// remaining budget. The flag reports whether a normal form was reached; a
// reduction that used exactly the whole budget still reports true. Binders
// are compiled away first, so normal forms are combinator terms.
func (e *Engine) Reduce(ctx context.Context, t *term.Term, budget int) (*term.Term, int, bool) {
	ctx, span := tracer.Start(ctx, "engine.Reduce",
		trace.WithAttributes(
			attribute.Int("budget", budget),
			attribute.Int("complexity", t.Complexity()),
		),
	)
	defer span.End()

	nf, remaining, ok := e.Normalize(ctx, t, budget)
	span.SetAttributes(
		attribute.Int("remaining", remaining),
		attribute.Bool("normal", ok),
		attribute.Int("result_complexity", nf.Complexity()),
	)
	return nf, remaining, ok
}

// Normalize is Reduce without tracing, for callers that reduce in a loop.
func (e *Engine) Normalize(ctx context.Context, t *term.Term, budget int) (*term.Term, int, bool) {
	m := e.newMachine(ctx, budget, modeFull)
	nf := m.normalize(e.compile(t))
	if m.exhausted {
		e.noteExhausted(t)
	}
	return nf, m.budget, !m.exhausted
}

// HeadNormalize reduces t until its head is exposed. Arguments of the result
// are simplified but not normalized. The flag reports whether a head normal
// form was reached before the budget ran out.
func (e *Engine) HeadNormalize(ctx context.Context, t *term.Term, budget int) (*term.Term, int, bool) {
	m := e.newMachine(ctx, budget, modeHead)
	h := m.run(e.compile(t), nil)
	if m.exhausted {
		e.noteExhausted(t)
	}
	return h, m.budget, !m.exhausted
}

// Stats returns a snapshot of the rule counters.
func (e *Engine) Stats() Stats {
	load := func(r Rule) uint64 { return atomic.LoadUint64(&e.steps[r]) }
	s := Stats{
		I:         load(RuleI),
		K:         load(RuleK),
		B:         load(RuleB),
		C:         load(RuleC),
		S:         load(RuleS),
		J:         load(RuleJ),
		Absorb:    load(RuleAbsorb),
		Join:      load(RuleJoin),
		Beta:      load(RuleBeta),
		Reflect:   load(RuleEval) + load(RuleQQuote) + load(RuleQApp) + load(RuleLess) + load(RuleEqual),
		Eta:       atomic.LoadUint64(&e.eta),
		Exhausted: atomic.LoadUint64(&e.exhausted),
		MemoHits:  atomic.LoadUint64(&e.memoHits),
	}
	for r := Rule(0); r < numRules; r++ {
		s.TotalSteps += load(r)
	}
	return s
}

func (e *Engine) compile(t *term.Term) *term.Term {
	c, err := compiler.Compile(t)
	if err != nil {
		// Reduction still works on the raw term: FUN, LET and ABS have
		// their own beta rules.
		e.log.Debug("compile failed, reducing raw term", "error", err)
		return t
	}
	return c
}

func (e *Engine) count(r Rule) {
	atomic.AddUint64(&e.steps[r], 1)
	if e.opts.Metrics {
		reduceSteps.WithLabelValues(r.String()).Inc()
	}
}

func (e *Engine) noteExhausted(t *term.Term) {
	atomic.AddUint64(&e.exhausted, 1)
	if e.opts.Metrics {
		reduceExhausted.Inc()
	}
	e.log.Debug("budget exhausted", "complexity", t.Complexity())
}

func (e *Engine) lookup(t *term.Term) (*term.Term, bool) {
	if !e.opts.Memoize {
		return nil, false
	}
	e.mu.Lock()
	nf, ok := e.memo[t]
	e.mu.Unlock()
	if ok {
		atomic.AddUint64(&e.memoHits, 1)
		if e.opts.Metrics {
			reduceMemoHits.Inc()
		}
	}
	return nf, ok
}

func (e *Engine) store(t, nf *term.Term) {
	if !e.opts.Memoize {
		return
	}
	e.mu.Lock()
	e.memo[t] = nf
	e.mu.Unlock()
}
