package bohm

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/order"
	"github.com/vic/skjnet/pkg/term"
)

func TestFromTerm(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.DefineTerm("Y", "f: f (Y f)"))
	require.NoError(t, p.DefineTerm("Eta", "x: y: x y"))
	require.NoError(t, p.DefineTerm("Omega", "x: BOT"))
	assert.Equal(t, []Combinator{{Bound: 1, Body: Headex{Head: 0, Args: []Pattern{{Head: "Y", Args: []int{0}}}}}}, p.Equations("Y"))
	assert.Equal(t, []Combinator{{Bound: 2, Body: Headex{Head: 0, Args: []Pattern{{Head: Identity, Args: []int{1}}}}}}, p.Equations("Eta"))
	assert.Equal(t, []Combinator{{Bound: 1, Body: Headex{Head: Bot}}}, p.Equations("Omega"))

	// Two f = f (f (Two f)) nests a parameter application, not a pattern.
	err := New(Options{}).DefineTerm("Two", "f: f (f (Two f))")
	assert.Error(t, err)

	err = New(Options{}).DefineTerm("Free", "f: g f")
	assert.Error(t, err)
}

func TestDecideEqualFixedPoints(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.DefineTerm("Y", "f: f (Y f)"))
	require.NoError(t, p.DefineTerm("Z0", "f: f (Z1 f)"))
	require.NoError(t, p.DefineTerm("Z1", "f: f (Z0 f)"))

	for _, pair := range [][2]string{{"Y", "Z0"}, {"Y", "Z1"}, {"Z0", "Z1"}, {"Y", "Y"}} {
		eq, err := p.DecideEqual(pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, eq, "%s = %s", pair[0], pair[1])
	}
}

func TestDecideEqual(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.DefineTerm("Y", "f: f (Y f)"))
	require.NoError(t, p.DefineTerm("Eta", "x: y: x y"))
	require.NoError(t, p.DefineTerm("Omega", "x: BOT"))
	require.NoError(t, p.DefineTerm("Half", "f: f (Omega f)"))
	require.NoError(t, p.DefineTerm("Flip", "x: y: y (Flip y x)"))
	require.NoError(t, p.DefineTerm("Flop", "x: y: y (Flop y x)"))
	require.NoError(t, p.DefineTerm("Swap", "x: y: y (Swap x y)"))

	tests := []struct {
		a, b string
		want bool
	}{
		{"Eta", Identity, true},
		{Identity, "Eta", true},
		{"Y", Identity, false},
		{"Y", "Half", false},
		{"Omega", "Omega", true},
		{"Omega", "Y", false},
		{"Flip", "Flop", true},
		{"Flip", "Swap", false},
	}
	for _, tt := range tests {
		got, err := p.DecideEqual(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s = %s", tt.a, tt.b)
	}
}

func TestDecideLess(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.DefineTerm("Y", "f: f (Y f)"))
	require.NoError(t, p.DefineTerm("Omega", "x: BOT"))
	require.NoError(t, p.DefineTerm("Half", "f: f (Omega f)"))

	tests := []struct {
		a, b string
		want bool
	}{
		{"Omega", "Y", true},
		{"Y", "Omega", false},
		{"Half", "Y", true},
		{"Y", "Half", false},
		{"Y", "Y", true},
	}
	for _, tt := range tests {
		got, err := p.DecideLess(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s ⊑ %s", tt.a, tt.b)
	}
}

func TestNondeterministic(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.DefineTerm("Y", "f: f (Y f)"))
	require.NoError(t, p.DefineTerm("N", "f: f (N f)"))
	require.NoError(t, p.DefineTerm("N", "f: f"))

	_, err := p.DecideEqual("Y", "N")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNondeterministic))
	assert.True(t, errors.Is(err, ErrNotImplemented))

	// Names that never reach N are still decided.
	eq, err := p.DecideEqual("Y", "Y")
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestValidate(t *testing.T) {
	p := New(Options{})
	p.Define("Bad", Combinator{Bound: 1, Body: Headex{Head: 3, Args: []Pattern{{Head: "Missing"}}}})
	p.Define("K", Combinator{Bound: 1, Body: Headex{Head: 0}})

	err := p.Validate()
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 3)

	_, err = p.DecideEqual("Bad", "Bad")
	assert.Error(t, err)

	_, err = New(Options{}).DecideEqual("Y", "Y")
	assert.Error(t, err)
}

func TestApproximant(t *testing.T) {
	p := New(Options{})
	require.NoError(t, p.DefineTerm("Y", "f: f (Y f)"))
	require.NoError(t, p.DefineTerm("Eta", "x: y: x y"))

	eng := engine.New(engine.Options{})
	ctx := context.Background()
	g := term.NVar("g")

	y2, err := p.Approximant("Y", 2)
	require.NoError(t, err)
	out, _, _ := eng.Reduce(ctx, term.App(y2, g), engine.Unbounded)
	assert.Same(t, term.App(g, term.App(g, term.BOT)), out, "got %s", out)

	y0, err := p.Approximant("Y", 0)
	require.NoError(t, err)
	assert.Same(t, term.BOT, y0)

	eta, err := p.Approximant("Eta", 1)
	require.NoError(t, err)
	out, _, _ = eng.Reduce(ctx, eta, engine.Unbounded)
	assert.Same(t, term.I, out, "got %s", out)

	// Deeper approximants are more defined.
	d := order.New(eng, order.Options{})
	y1, err := p.Approximant("Y", 1)
	require.NoError(t, err)
	assert.Equal(t, engine.True, d.TryDecideLess(ctx, y1, y2))
	assert.NotEqual(t, engine.True, d.TryDecideLess(ctx, y2, y1))
}
