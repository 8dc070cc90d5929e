package compiler

import (
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

func TestAbstractRuleTable(t *testing.T) {
	tests := []struct {
		name string
		body *term.Term
		want *term.Term
	}{
		{"identity", x, term.I},
		{"constant", y, term.App(term.K, y)},
		{"top", term.TOP, term.TOP},
		{"bot", term.BOT, term.BOT},
		{"eta", term.App(y, x), y},
		{"compose", term.App(y, term.App(z, x)), term.Apply(term.B, y, z)},
		{"flip", term.App(term.App(y, x), z), term.Apply(term.C, y, z)},
		{"share", term.App(x, x), term.Apply(term.S, term.I, term.I)},
		{"join idempotent", term.Join(x, x), term.Join(term.I, term.I)},
		{"join k", term.Join(x, y), term.Join(term.I, term.App(term.K, y))},
		{"nested", term.Apply(x, y, term.App(z, x)),
			term.Apply(term.S, term.Apply(term.C, term.I, y), z)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Abstract(x, tt.body)
			require.NoError(t, err)
			assert.Same(t, tt.want, got, "got %s", got)
			assert.False(t, got.HasFree("x"))
		})
	}
}

func TestAbstractJoinCommutes(t *testing.T) {
	bodies := []*term.Term{x, y, term.App(y, x), term.App(x, z), term.K}
	for _, a := range bodies {
		for _, b := range bodies {
			ab, err := Abstract(x, term.Join(a, b))
			require.NoError(t, err)
			ba, err := Abstract(x, term.Join(b, a))
			require.NoError(t, err)
			assert.Same(t, ab, ba)
		}
	}
}

func TestAbstractRank0(t *testing.T) {
	// ABS ABS 1 is K.
	got, err := Compile(term.Abs(term.Abs(term.IVar(1))))
	require.NoError(t, err)
	assert.Same(t, term.K, got)

	// ABS ABS (1 0) is eta equal to I.
	got, err = Compile(term.Abs(term.Abs(term.App(term.IVar(1), term.IVar(0)))))
	require.NoError(t, err)
	assert.Same(t, term.I, got)

	// Free indices are lowered.
	got, err = AbstractRank0(term.App(term.IVar(3), term.IVar(0)))
	require.NoError(t, err)
	assert.Same(t, term.IVar(2), got)
}

func TestCompile(t *testing.T) {
	tests := []struct {
		input string
		want  *term.Term
	}{
		{"x: y: x", term.K},
		{"x: y: z: x z (y z)", term.S},
		{"f: g: x: f (g x)", term.B},
		{"let i = x: x; in i i", term.App(term.Apply(term.S, term.I, term.I), term.I)},
		{"x: {K}", term.App(term.K, term.Quote(term.K))},
		{"x: x | K", term.Join(term.I, term.App(term.K, term.K))},
	}
	for _, tt := range tests {
		tm, err := lambda.Parse(tt.input)
		require.NoError(t, err, tt.input)
		got, err := Compile(tm)
		require.NoError(t, err, tt.input)
		assert.Same(t, tt.want, got, "%s compiled to %s", tt.input, got)
	}
}

func TestQuotedVariableNotImplemented(t *testing.T) {
	_, err := Abstract(x, term.Quote(x))
	assert.ErrorIs(t, err, ErrNotImplemented)

	_, err = Compile(term.Abs(term.Quote(term.IVar(0))))
	assert.ErrorIs(t, err, ErrNotImplemented)

	assert.ErrorIs(t, QAbstract(x, term.Quote(x)), ErrNotImplemented)

	_, err = Abstract(term.K, x)
	assert.Error(t, err)
}
