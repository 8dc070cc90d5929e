// Package order decides the Scott information order and extensional
// equality between terms. Answers are three-valued: True and False are
// always sound, Unknown means the search gave up and must never be read as
// False.
package order

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/term"
)

// Options bound the search.
type Options struct {
	// Budget is the reduction budget of each head normalization.
	Budget int
	// MaxDepth bounds the nesting of structural comparisons.
	MaxDepth int
	// MaxGoals bounds the number of comparisons in one decision.
	MaxGoals int
	// ApproxDepth is the deepest approximant tried when the structural
	// comparison is undecided. A negative depth disables approximation.
	ApproxDepth int
	// MaxFrontier bounds the approximants kept per side.
	MaxFrontier int
	// MaxNesting bounds decisions started by LESS and EQUAL while reducing
	// inside another decision.
	MaxNesting int
	Metrics    bool
	Logger     *slog.Logger
}

// DefaultOptions are the options used for zero fields.
var DefaultOptions = Options{
	Budget:      1000,
	MaxDepth:    32,
	MaxGoals:    4096,
	ApproxDepth: 3,
	MaxFrontier: 16,
	MaxNesting:  2,
}

func (o Options) withDefaults() Options {
	if o.Budget == 0 {
		o.Budget = DefaultOptions.Budget
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = DefaultOptions.MaxDepth
	}
	if o.MaxGoals == 0 {
		o.MaxGoals = DefaultOptions.MaxGoals
	}
	if o.ApproxDepth == 0 {
		o.ApproxDepth = DefaultOptions.ApproxDepth
	}
	if o.MaxFrontier == 0 {
		o.MaxFrontier = DefaultOptions.MaxFrontier
	}
	if o.MaxNesting == 0 {
		o.MaxNesting = DefaultOptions.MaxNesting
	}
	return o
}

type pair struct{ x, y *term.Term }

// Decider answers order questions. It is safe for concurrent use; each call
// runs its own search and only completed answers are shared.
type Decider struct {
	eng  *engine.Engine
	opts Options
	log  *slog.Logger

	mu    sync.Mutex
	cache map[pair]engine.Truth

	group singleflight.Group
}

// New returns a Decider reducing with eng and installs it as the oracle of
// eng, so that LESS and EQUAL reduce by asking it.
func New(eng *engine.Engine, opts Options) *Decider {
	opts = opts.withDefaults()
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	d := &Decider{
		eng:   eng,
		opts:  opts,
		log:   log.With("component", "order"),
		cache: make(map[pair]engine.Truth),
	}
	eng.SetOracle(d)
	return d
}

// Engine returns the engine the decider reduces with.
func (d *Decider) Engine() *engine.Engine {
	return d.eng
}

type nestingKey struct{}

func nesting(ctx context.Context) int {
	n, _ := ctx.Value(nestingKey{}).(int)
	return n
}

// TryDecideLess decides x ⊑ y.
func (d *Decider) TryDecideLess(ctx context.Context, x, y *term.Term) engine.Truth {
	return d.decide(ctx, "less", x, y, func(s *session) engine.Truth {
		return s.decideLess(x, y)
	})
}

// TryDecideEqual decides x ≡ y with one order decision each way.
func (d *Decider) TryDecideEqual(ctx context.Context, x, y *term.Term) engine.Truth {
	return d.decide(ctx, "equal", x, y, func(s *session) engine.Truth {
		lr := s.decideLess(x, y)
		if lr == engine.False {
			return engine.False
		}
		return lr.And(s.decideLess(y, x))
	})
}

func (d *Decider) decide(ctx context.Context, op string, x, y *term.Term, f func(*session) engine.Truth) engine.Truth {
	n := nesting(ctx)
	if n > d.opts.MaxNesting {
		return engine.Unknown
	}
	ctx = context.WithValue(ctx, nestingKey{}, n+1)

	ctx, span := tracer.Start(ctx, "order."+op,
		trace.WithAttributes(
			attribute.String("lhs", x.String()),
			attribute.String("rhs", y.String()),
			attribute.Int("nesting", n),
		),
	)
	defer span.End()

	run := func() engine.Truth {
		s := d.newSession(ctx, true)
		answer := f(s)
		d.promote(s)
		return answer
	}
	var answer engine.Truth
	if n == 0 {
		// A nested decision may ask the same question as the decision
		// that started it, so only top-level calls are deduplicated.
		key := fmt.Sprintf("%s/%d/%d", op, x.ID(), y.ID())
		v, _, _ := d.group.Do(key, func() (interface{}, error) {
			return run(), nil
		})
		answer = v.(engine.Truth)
	} else {
		answer = run()
	}

	span.SetAttributes(attribute.String("result", answer.String()))
	if d.opts.Metrics {
		decideTotal.WithLabelValues(op, answer.String()).Inc()
	}
	return answer
}

func (d *Decider) lookup(p pair) (engine.Truth, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.cache[p]
	return t, ok
}

// promote publishes the final answers of a finished session.
func (d *Decider) promote(s *session) {
	if len(s.memo) == 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for p, t := range s.memo {
		d.cache[p] = t
	}
}

// Dominates reports that a is strictly above b: b ⊑ a and not a ⊑ b. An
// undecided question never dominates.
func (d *Decider) Dominates(ctx context.Context, a, b *term.Term) bool {
	return d.TryDecideLess(ctx, b, a) == engine.True && d.TryDecideLess(ctx, a, b) == engine.False
}
