package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/lambda"
	"github.com/vic/skjnet/pkg/term"
)

var (
	x = term.NVar("x")
	y = term.NVar("y")
	z = term.NVar("z")
)

func reduceTerm(t *testing.T, in *term.Term, budget int) (*term.Term, *Graph) {
	t.Helper()
	g := New(Options{})
	root := g.FromTerm(in)
	g.Reduce(context.Background(), root, budget)
	out, err := g.ToTerm(root)
	if err != nil {
		t.Fatalf("read back %s: %v", in, err)
	}
	return out, g
}

func TestCombinatorRewrites(t *testing.T) {
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
		{"J", term.Apply(term.J, x, y), term.Join(x, y)},
		{"TOP", term.Apply(term.TOP, x, y), term.TOP},
		{"BOT", term.App(term.BOT, x), term.BOT},
		{"join", term.App(term.Join(term.K, term.I), x), term.Join(x, term.App(term.K, x))},
		{"SKK", term.Apply(term.S, term.K, term.K, x), x},
		{"EVAL", term.App(term.EVAL, term.Quote(term.App(term.I, x))), x},
		{"QAPP", term.Apply(term.QAPP, term.Quote(x), term.Quote(y)), term.Quote(term.App(x, y))},
		{"QQUOTE", term.App(term.QQUOTE, term.Quote(x)), term.Quote(term.Quote(x))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := reduceTerm(t, tt.in, 100)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestStatsAndTrace(t *testing.T) {
	g := New(Options{})
	g.EnableTrace(10)
	root := g.FromTerm(term.Apply(term.S, term.K, term.K, x))
	remaining := g.Reduce(context.Background(), root, 10)
	if remaining != 8 {
		t.Errorf("remaining = %d, want 8", remaining)
	}

	stats := g.GetStats()
	if stats.TotalSteps != 2 || stats.S != 1 || stats.K != 1 || stats.Copies != 1 {
		t.Errorf("unexpected stats: %s", spew.Sdump(stats))
	}
	events := g.TraceSnapshot()
	if len(events) != 2 || events[0].Rule != engine.RuleS || events[1].Rule != engine.RuleK {
		t.Fatalf("unexpected trace: %s", spew.Sdump(events))
	}
	if events[0].HeadType != NodeTypeAtom {
		t.Errorf("head type = %s", events[0].HeadType)
	}

	g.DisableTrace()
	if g.TraceSnapshot() != nil {
		t.Errorf("disabled trace still returns events")
	}
}

func TestBetaSubstitutesThroughSharing(t *testing.T) {
	in, err := lambda.Parse("(x: f x x) y")
	if err != nil {
		t.Fatal(err)
	}
	got, _ := reduceTerm(t, in, 10)
	want := term.Apply(term.NVar("f"), y, y)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	in, err = lambda.Parse("(x: y: x y) z")
	if err != nil {
		t.Fatal(err)
	}
	got, _ = reduceTerm(t, in, 10)
	want = term.Abs(term.App(z, term.IVar(0)))
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestBetaKeepsOriginalAbstraction(t *testing.T) {
	g := New(Options{})
	v := g.NewVar("v")
	f := g.NewAtom(term.NVar("f"))
	id := g.NewAbs(v, g.NewApp(f, v))
	a := g.NewApp(id, g.NewAtom(x))
	b := g.NewApp(id, g.NewAtom(y))
	both := g.NewJoin(a, b)

	g.Reduce(context.Background(), both, engine.Unbounded)
	got, err := g.ToTerm(both)
	if err != nil {
		t.Fatal(err)
	}
	fx, fy := term.App(term.NVar("f"), x), term.App(term.NVar("f"), y)
	if got != term.Join(fx, fy) {
		t.Errorf("got %s", got)
	}
	if back, _ := g.ToTerm(id); back != term.Abs(term.App(term.NVar("f"), term.IVar(0))) {
		t.Errorf("abstraction changed: %s", back)
	}
}

// stream builds the infinite constant stream of x: s = C (C I x) s.
func stream(g *Graph, x *term.Term) NodeID {
	cix := g.NewApp(g.NewApp(g.NewAtom(term.C), g.NewAtom(term.I)), g.NewAtom(x))
	s := g.NewApp(g.NewApp(g.NewAtom(term.C), cix), g.NewAtom(term.BOT))
	g.SetRhs(s, s)
	return s
}

func TestStreamIsFixedPoint(t *testing.T) {
	g := New(Options{})
	s := stream(g, x)

	if remaining := g.Reduce(context.Background(), s, 100); remaining != 100 {
		t.Errorf("a stream in normal form used %d steps", 100-remaining)
	}
	if g.TryBetaStep(s) {
		t.Errorf("TryBetaStep made progress on a normal stream")
	}
	if _, err := g.ToTerm(s); !errors.Is(err, ErrCyclic) {
		t.Errorf("ToTerm on a stream: %v", err)
	}

	// The head of the stream is x.
	head := g.NewApp(s, g.NewAtom(term.K))
	g.Reduce(context.Background(), head, 100)
	if got, err := g.ToTerm(head); err != nil || got != x {
		t.Errorf("head = %v, %v", got, err)
	}
	if g.Type(s) != NodeTypeApp {
		t.Errorf("taking the head rewrote the stream")
	}

	fresh := New(Options{})
	if !Equal(g, s, fresh, stream(fresh, x)) {
		t.Errorf("stream changed by reduction")
	}
}

func TestFix(t *testing.T) {
	g := New(Options{})
	bot := g.Fix(g.NewAtom(term.I))
	g.Reduce(context.Background(), bot, 10)
	if got, _ := g.ToTerm(bot); got != term.BOT {
		t.Errorf("fix I = %s, want BOT", got)
	}

	k := g.Fix(g.FromTerm(term.App(term.K, x)))
	g.Reduce(context.Background(), k, 10)
	if got, _ := g.ToTerm(k); got != x {
		t.Errorf("fix (K x) = %s, want x", got)
	}
}

func TestBudget(t *testing.T) {
	w := term.Apply(term.S, term.I, term.I)
	g := New(Options{})
	root := g.FromTerm(term.App(w, w))
	if remaining := g.Reduce(context.Background(), root, 50); remaining != 0 {
		t.Errorf("omega stopped with %d left", remaining)
	}
	if !g.TryBetaStep(root) {
		t.Errorf("omega has no redex left")
	}
}

func TestEqual(t *testing.T) {
	g := New(Options{})
	s1 := stream(g, x)

	// The same stream unrolled once.
	cix := g.FromTerm(term.Apply(term.C, term.I, x))
	c := g.NewAtom(term.C)
	inner := g.NewApp(g.NewApp(c, cix), g.NewAtom(term.BOT))
	s2 := g.NewApp(g.NewApp(c, cix), inner)
	g.SetRhs(inner, s2)

	if !Equal(g, s1, g, s2) {
		t.Errorf("unrolled stream is not bisimilar")
	}
	if Equal(g, s1, g, stream(g, y)) {
		t.Errorf("streams of x and y are bisimilar")
	}

	// Bound variables are compared up to renaming.
	a := g.FromTerm(term.Abs(term.App(x, term.IVar(0))))
	b := g.FromTerm(term.Abs(term.App(x, term.IVar(0))))
	if a == b {
		t.Fatalf("open abstractions were shared")
	}
	if !Equal(g, a, g, b) {
		t.Errorf("alpha equivalent abstractions differ")
	}
	if Equal(g, a, g, g.FromTerm(term.Abs(term.App(term.IVar(0), x)))) {
		t.Errorf("different abstractions are equal")
	}
}

func TestCopy(t *testing.T) {
	g := New(Options{})
	s := stream(g, x)
	head := g.NewApp(s, g.NewAtom(term.K))

	h, root := g.Copy(head)
	if !Equal(g, head, h, root) {
		t.Fatalf("copy differs")
	}
	h.Reduce(context.Background(), root, 100)
	if got, _ := h.ToTerm(root); got != x {
		t.Errorf("copy reduced to %s", got)
	}
	if g.Type(head) != NodeTypeApp {
		t.Errorf("reducing the copy changed the original")
	}
	if Equal(g, head, h, root) {
		t.Errorf("reduced copy still equal to the redex")
	}
}

func TestCollect(t *testing.T) {
	g := New(Options{})
	root := g.FromTerm(term.Apply(term.B, x, term.App(term.I, y), z))
	garbage := g.FromTerm(term.App(term.K, term.Quote(x)))
	g.Reduce(context.Background(), root, 10)

	if n := g.Collect(root); n == 0 {
		t.Errorf("nothing collected")
	}
	if g.Type(garbage) != NodeTypeErase {
		t.Errorf("garbage is %s", g.Type(garbage))
	}
	got, err := g.ToTerm(root)
	if err != nil || got != term.App(x, term.App(y, z)) {
		t.Errorf("after collect: %v, %v", got, err)
	}
	if g.GetStats().Erased == 0 {
		t.Errorf("erased not counted")
	}
}

func TestAbstract(t *testing.T) {
	g := New(Options{})
	v := g.NewVar("v")
	body := g.NewApp(g.NewAtom(y), g.NewApp(g.NewAtom(z), v))
	f, err := g.Abstract(v, body)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := g.ToTerm(f); got != term.Apply(term.B, y, z) {
		t.Errorf("got %s", got)
	}

	if _, err := g.Abstract(v, stream(g, x)); !errors.Is(err, ErrCyclic) {
		t.Errorf("abstracting a cycle: %v", err)
	}
}

func TestAgreesWithEngine(t *testing.T) {
	e := engine.New(engine.Options{})
	for _, src := range []string{
		"S K K x",
		"B x (C I y) z",
		"C (C I x) y K",
		"S (K S) K x y z",
		"J (K x) (K y) z",
		"(f: f (f x)) (B y y)",
	} {
		in, err := lambda.Parse(src)
		if err != nil {
			t.Fatalf("%s: %v", src, err)
		}
		want, _, _ := e.Reduce(context.Background(), in, 1000)
		got, _ := reduceTerm(t, in, 1000)
		if got != want {
			t.Errorf("%s: graph %s, engine %s", src, got, want)
		}
	}
}

func TestBudgetUsedExactly(t *testing.T) {
	g := New(Options{})
	root := g.FromTerm(term.Apply(term.S, term.K, term.K, x))
	if remaining := g.Reduce(context.Background(), root, 2); remaining != 0 {
		t.Fatalf("remaining %d, want 0", remaining)
	}
	if !g.IsNormal(root) {
		t.Errorf("S K K x took exactly two steps but is not normal")
	}

	g = New(Options{})
	root = g.FromTerm(term.Apply(term.S, term.K, term.K, x))
	g.Reduce(context.Background(), root, 1)
	if g.IsNormal(root) {
		t.Errorf("one step is not enough for S K K x")
	}
}

func TestQuotedBinder(t *testing.T) {
	quoteY := term.Fun(y, term.Quote(y))
	tests := []struct {
		name string
		in   *term.Term
		want *term.Term
	}{
		{"unapplied", quoteY, quoteY},
		{"applied", term.App(quoteY, x), term.Quote(x)},
		{"abs", term.App(term.Abs(term.Quote(term.IVar(0))), x), term.Quote(x)},
		{"let", term.Let(y, x, term.App(term.Quote(y), y)), term.App(term.Quote(x), x)},
		{"outer binder kept", term.Fun(z, term.App(quoteY, z)), term.Fun(z, term.App(quoteY, z))},
		{"outer binder applied", term.App(term.Fun(z, term.App(quoteY, z)), x), term.Quote(x)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := reduceTerm(t, tt.in, 100)
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	e := engine.New(engine.Options{})
	for _, in := range []*term.Term{tests[1].in, tests[3].in, tests[5].in} {
		want, _, _ := e.Reduce(context.Background(), in, 100)
		if got, _ := reduceTerm(t, in, 100); got != want {
			t.Errorf("%s: graph %s, engine %s", in, got, want)
		}
	}
}

func TestQuotedBinderUnderAbs(t *testing.T) {
	// (f: v: f v) applied to binders kept as terms puts them under a graph
	// binder.
	apply := term.Abs(term.Abs(term.App(term.IVar(1), term.IVar(0))))

	// The argument is a graph variable that would be quoted, so the redex
	// stays and the graph is not normal.
	g := New(Options{})
	root := g.FromTerm(term.App(apply, term.Fun(y, term.Quote(y))))
	g.Reduce(context.Background(), root, 100)
	if g.IsNormal(root) {
		t.Errorf("quoting a graph variable rewrote")
	}
	got, err := g.ToTerm(root)
	if err != nil {
		t.Fatal(err)
	}
	if want := term.Abs(term.App(term.Fun(y, term.Quote(y)), term.IVar(0))); got != want {
		t.Errorf("got %s, want %s", got, want)
	}

	// The quote is only in a nested binder, so the variable is reconnected.
	passQuote := term.Fun(z, term.App(z, term.Fun(y, term.Quote(y))))
	g = New(Options{})
	root = g.FromTerm(term.App(apply, passQuote))
	g.Reduce(context.Background(), root, 100)
	if !g.IsNormal(root) {
		t.Errorf("redex left")
	}
	got, err = g.ToTerm(root)
	if err != nil {
		t.Fatal(err)
	}
	if want := term.Abs(term.App(term.IVar(0), term.Fun(y, term.Quote(y)))); got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestReadSharedUnderDifferentBinders(t *testing.T) {
	g := New(Options{})
	v1, v2 := g.NewVar("a"), g.NewVar("b")
	shared := g.NewApp(v1, v2)
	both := g.NewApp(g.NewAbs(v1, shared), g.NewAbs(v2, shared))

	got, err := g.ToTerm(both)
	if err != nil {
		t.Fatal(err)
	}
	want := term.App(
		term.Abs(term.App(term.IVar(0), term.NVar("b"))),
		term.Abs(term.App(term.NVar("a"), term.IVar(0))),
	)
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
