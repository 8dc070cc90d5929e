package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vic/skjnet/pkg/lambda"
	"github.com/vic/skjnet/pkg/term"
)

var (
	x = term.NVar("x")
	y = term.NVar("y")
	z = term.NVar("z")
)

func reduce(t *testing.T, e *Engine, in *term.Term) *term.Term {
	t.Helper()
	out, _, ok := e.Reduce(context.Background(), in, 1000)
	require.True(t, ok, "budget exhausted reducing %s", in)
	return out
}

func TestCombinatorRules(t *testing.T) {
	e := New(Options{})
	tests := []struct {
		name string
		in   *term.Term
		want *term.Term
	}{
		{"I", term.App(term.I, x), x},
		{"K", term.Apply(term.K, x, y), x},
		{"B", term.Apply(term.B, x, y, z), term.App(x, term.App(y, z))},
		{"C", term.Apply(term.C, x, y, z), term.Apply(x, z, y)},
		{"S", term.Apply(term.S, x, y, z), term.Apply(x, z, term.App(y, z))},
		{"TOP", term.Apply(term.TOP, x, y), term.TOP},
		{"BOT", term.App(term.BOT, x), term.BOT},
		{"J", term.Apply(term.J, x, y), term.Join(x, y)},
		{"SKK", term.Apply(term.S, term.K, term.K, x), x},
		{"extra args", term.Apply(term.K, x, y, z), term.App(x, z)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := reduce(t, e, tt.in)
			assert.Same(t, tt.want, got, "got %s", got)
		})
	}
}

func TestPartialCombinatorsAreNormal(t *testing.T) {
	e := New(Options{})
	for _, tm := range []*term.Term{
		term.I, term.K, term.B, term.C, term.S,
		term.App(term.K, x),
		term.App(term.B, x),
		term.Apply(term.C, term.Apply(term.C, term.I, x), y),
		term.Apply(term.S, x, y),
	} {
		assert.Same(t, tm, reduce(t, e, tm), "%s", tm)
	}

	// J is the join of the two projections.
	assert.Same(t, term.Join(term.K, term.App(term.K, term.I)), reduce(t, e, term.J))
}

func TestAbstractionsReduceToCombinators(t *testing.T) {
	e := New(Options{})

	tm, err := lambda.ParseSexpr("(ABS (ABS (1 0)))")
	require.NoError(t, err)
	assert.Same(t, term.I, reduce(t, e, tm))

	tm, err = lambda.ParseSexpr("(ABS (ABS 1))")
	require.NoError(t, err)
	assert.Same(t, term.K, reduce(t, e, tm))

	tm, err = lambda.Parse("f: x: f (f x)")
	require.NoError(t, err)
	twice := reduce(t, e, tm)
	assert.Same(t, term.App(y, term.App(y, z)), reduce(t, e, term.Apply(twice, y, z)))
}

func TestSKI(t *testing.T) {
	e := New(Options{})
	// S K I z behaves as I z, not as K z.
	assert.Same(t, reduce(t, e, term.App(term.I, term.B)), reduce(t, e, term.Apply(term.S, term.K, term.I, term.B)))
	assert.Same(t, x, reduce(t, e, term.Apply(term.S, term.K, term.I, x)))
	assert.Same(t, term.App(term.K, term.B), reduce(t, e, term.App(term.K, term.B)))
	assert.Same(t, term.B, reduce(t, e, term.Apply(term.S, term.K, term.I, term.B)))
	assert.Same(t, term.I, reduce(t, e, term.Apply(term.S, term.K, term.I)))
}

func TestJoinDistributes(t *testing.T) {
	e := New(Options{})
	got := reduce(t, e, term.App(term.Join(term.I, term.K), x))
	assert.Same(t, term.Join(x, term.App(term.K, x)), got)

	got = reduce(t, e, term.Apply(term.J, term.K, term.App(term.K, term.I), x, y))
	assert.Same(t, term.Join(x, y), got)

	assert.Same(t, term.TOP, reduce(t, e, term.Join(term.App(term.I, term.TOP), x)))
}

func TestBudgetExhaustion(t *testing.T) {
	e := New(Options{})
	w := term.Apply(term.S, term.I, term.I)
	omega := term.App(w, w)

	out, remaining, ok := e.Reduce(context.Background(), omega, 100)
	assert.Equal(t, 0, remaining)
	assert.False(t, ok)
	assert.NotNil(t, out)
	assert.Equal(t, uint64(1), e.Stats().Exhausted)

	out, remaining, ok = e.Reduce(context.Background(), x, Unbounded)
	assert.Same(t, x, out)
	assert.Equal(t, Unbounded, remaining)
	assert.True(t, ok)

	out, remaining, ok = e.Reduce(context.Background(), term.App(term.I, x), 0)
	assert.Same(t, term.App(term.I, x), out)
	assert.Equal(t, 0, remaining)
	assert.False(t, ok)
}

func TestBudgetUsedExactly(t *testing.T) {
	e := New(Options{})

	// One step is needed and one is given: the budget is spent, yet the
	// result is a normal form.
	out, remaining, ok := e.Reduce(context.Background(), term.App(term.I, x), 1)
	assert.Same(t, x, out)
	assert.Equal(t, 0, remaining)
	assert.True(t, ok)

	out, remaining, ok = e.Reduce(context.Background(), term.Apply(term.S, term.K, term.K, x), 2)
	assert.Same(t, x, out)
	assert.Equal(t, 0, remaining)
	assert.True(t, ok)
	assert.Zero(t, e.Stats().Exhausted)

	_, _, ok = e.Reduce(context.Background(), term.Apply(term.S, term.K, term.K, x), 1)
	assert.False(t, ok)

	// I, K and K a are normal without spending steps on eta.
	out, _, ok = e.Reduce(context.Background(), term.App(term.I, term.K), 1)
	assert.Same(t, term.K, out)
	assert.True(t, ok)
	out, _, ok = e.Reduce(context.Background(), term.App(term.K, term.App(term.I, x)), 1)
	assert.Same(t, term.App(term.K, x), out)
	assert.True(t, ok)
	out, _, ok = e.Reduce(context.Background(), term.App(term.K, term.App(term.I, term.TOP)), 1)
	assert.Same(t, term.TOP, out)
	assert.True(t, ok)
}

func TestBudgetAccounting(t *testing.T) {
	e := New(Options{})
	_, remaining, _ := e.Reduce(context.Background(), term.Apply(term.S, term.K, term.K, x), 10)
	assert.Equal(t, 8, remaining)
	assert.Equal(t, uint64(2), e.Stats().TotalSteps)
}

func TestMaxComplexity(t *testing.T) {
	e := New(Options{MaxComplexity: 20})
	w := term.Apply(term.S, term.I, term.I)
	// W (W W) grows until the limit stops it.
	out, remaining, ok := e.Reduce(context.Background(), term.App(w, term.App(term.App(term.S, term.I), w)), Unbounded)
	assert.NotNil(t, out)
	assert.Equal(t, Unbounded, remaining)
	assert.False(t, ok)
	assert.NotZero(t, e.Stats().Exhausted)
}

func TestMemoize(t *testing.T) {
	e := New(Options{Memoize: true})
	tm := term.Apply(term.S, term.K, term.K, term.Apply(term.B, x, y, z))
	first := reduce(t, e, tm)
	second := reduce(t, e, tm)
	assert.Same(t, first, second)
	assert.NotZero(t, e.Stats().MemoHits)
}

func TestQuotesAreNormalized(t *testing.T) {
	e := New(Options{})
	assert.Same(t, term.Quote(x), reduce(t, e, term.Quote(term.App(term.I, x))))
	assert.Same(t, term.App(x, term.Quote(y)), reduce(t, e, term.Apply(term.K, term.App(x, term.Quote(term.App(term.I, y))), z)))
}

type fixedOracle struct{ less, equal Truth }

func (o fixedOracle) TryDecideLess(ctx context.Context, a, b *term.Term) Truth  { return o.less }
func (o fixedOracle) TryDecideEqual(ctx context.Context, a, b *term.Term) Truth { return o.equal }

func TestReflection(t *testing.T) {
	e := New(Options{})
	qx, qy := term.Quote(x), term.Quote(y)

	assert.Same(t, term.App(x, y), reduce(t, e, term.Apply(term.EVAL, term.Quote(term.App(term.I, x)), y)))
	assert.Same(t, term.Quote(qx), reduce(t, e, term.App(term.QQUOTE, qx)))
	assert.Same(t, term.Quote(term.App(x, y)), reduce(t, e, term.Apply(term.QAPP, qx, qy)))
	assert.Same(t, term.Quote(x), reduce(t, e, term.Apply(term.QAPP, term.Quote(term.I), term.App(term.I, qx))))

	// Without an oracle LESS is stuck.
	stuck := term.Apply(term.LESS, qx, qy)
	assert.Same(t, stuck, reduce(t, e, stuck))

	e.SetOracle(fixedOracle{less: True, equal: False})
	assert.Same(t, term.K, reduce(t, e, term.Apply(term.LESS, qx, qy)))
	assert.Same(t, term.App(term.K, term.I), reduce(t, e, term.Apply(term.EQUAL, qx, qy)))

	e.SetOracle(fixedOracle{})
	assert.Same(t, stuck, reduce(t, e, stuck))

	// Non-quote arguments never reach the oracle.
	e.SetOracle(fixedOracle{less: True})
	assert.Same(t, term.Apply(term.LESS, x, qy), reduce(t, e, term.Apply(term.LESS, term.App(term.I, x), qy)))
}

func TestSimplify(t *testing.T) {
	e := New(Options{})
	w := term.Apply(term.S, term.I, term.I)
	tests := []struct {
		in, want *term.Term
	}{
		{term.App(term.S, term.App(term.I, x)), term.App(term.S, x)},
		{term.Apply(term.K, x, term.App(w, w)), x},
		{term.Apply(term.B, x, y, z), term.App(x, term.App(y, z))},
		{term.Apply(term.C, term.I, x, y), term.App(y, x)},
		{term.Apply(term.S, term.I, term.I, x), term.Apply(term.S, term.I, term.I, x)},
		{term.Apply(term.J, term.K, term.I, x), term.Join(x, term.App(term.K, x))},
		{term.Apply(term.TOP, x, y), term.TOP},
		{term.App(term.EVAL, term.Quote(term.App(term.I, x))), x},
		{term.Abs(term.App(term.I, term.IVar(0))), term.Abs(term.IVar(0))},
	}
	for _, tt := range tests {
		assert.Same(t, tt.want, e.Simplify(tt.in), "%s", tt.in)
	}
}

func TestHeadNormalize(t *testing.T) {
	e := New(Options{})
	h, _, ok := e.HeadNormalize(context.Background(), term.Apply(term.S, term.I, term.I, x), 100)
	assert.True(t, ok)
	assert.Same(t, term.App(x, x), h)

	h, _, ok = e.HeadNormalize(context.Background(), term.App(term.K, term.Apply(term.I, x)), 100)
	assert.True(t, ok)
	assert.Same(t, term.App(term.K, x), h)

	w := term.Apply(term.S, term.I, term.I)
	_, remaining, ok := e.HeadNormalize(context.Background(), term.App(w, w), 10)
	assert.False(t, ok)
	assert.Equal(t, 0, remaining)
}

func TestConfluenceAcrossBudgets(t *testing.T) {
	tm := term.Apply(term.S, term.Apply(term.K, term.S), term.K, x, y, z)
	var results []*term.Term
	for _, budget := range []int{50, 500, Unbounded} {
		out, _, _ := New(Options{}).Reduce(context.Background(), tm, budget)
		results = append(results, out)
	}
	assert.Same(t, results[0], results[1])
	assert.Same(t, results[1], results[2])
}
