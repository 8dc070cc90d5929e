package codec

import (
	"github.com/vic/skjnet/pkg/compiler"
	"github.com/vic/skjnet/pkg/lambda"
	"github.com/vic/skjnet/pkg/term"
)

// Constructors of the encodings. A value of a type with n constructors is
// a function of n continuations that calls the one for its constructor
// with the constructor's fields.
var (
	UnitTerm = term.I

	True  = term.K
	False = term.App(term.K, term.I)

	Zero = term.K
	None = term.K
	Nil  = term.K

	// Y is the fixed point combinator f: (x: f (x x)) (x: f (x x)).
	Y = mustCompile("f: (x: f (x x)) (x: f (x x))")

	// NumAdd adds two numerals by recursion on the first.
	NumAdd = term.App(Y, mustCompile("add: m: n: m n (p: K (C I (add p n)))"))
)

// Succ is K (C I n): the second continuation applied to n.
func Succ(n *term.Term) *term.Term { return Some(n) }

func Some(x *term.Term) *term.Term {
	return term.App(term.K, term.Apply(term.C, term.I, x))
}

// Pair is C (C I a) b, the function f: f a b.
func Pair(a, b *term.Term) *term.Term {
	return term.Apply(term.C, term.Apply(term.C, term.I, a), b)
}

// Inl is B K (C I a), the function f: g: f a.
func Inl(a *term.Term) *term.Term {
	return term.Apply(term.B, term.K, term.Apply(term.C, term.I, a))
}

// Inr is K (C I b), the function f: g: g b.
func Inr(b *term.Term) *term.Term {
	return term.App(term.K, term.Apply(term.C, term.I, b))
}

// Cons is K (Pair h t), the function n: c: c h t.
func Cons(h, t *term.Term) *term.Term {
	return term.App(term.K, Pair(h, t))
}

func BoolTerm(b bool) *term.Term {
	if b {
		return True
	}
	return False
}

// NumTerm is the unary numeral n.
func NumTerm(n int) *term.Term {
	t := Zero
	for i := 0; i < n; i++ {
		t = Succ(t)
	}
	return t
}

func mustCompile(src string) *term.Term {
	t, err := lambda.Parse(src)
	if err != nil {
		panic(err)
	}
	t, err = compiler.Compile(t)
	if err != nil {
		panic(err)
	}
	return t
}
