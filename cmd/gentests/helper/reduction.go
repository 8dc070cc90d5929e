package gentests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/vic/skjnet/pkg/compiler"
	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/graph"
	"github.com/vic/skjnet/pkg/lambda"
	"github.com/vic/skjnet/pkg/term"
)

// Budget bounds every reduction run by the generated tests.
const Budget = 10000

func compile(t *testing.T, what, src string) *term.Term {
	t.Helper()
	parsed, err := lambda.Parse(strings.TrimSpace(src))
	if err != nil {
		t.Fatalf("parse error for %s: %v", what, err)
	}
	out, err := compiler.Compile(parsed)
	if err != nil {
		t.Fatalf("compile error for %s: %v", what, err)
	}
	return out
}

// CheckReduction reduces input on the term engine and on a graph, and
// checks that both reach the normal form of output.
func CheckReduction(t *testing.T, testName string, inputStr string, outputStr string) {
	ctx := context.Background()
	in := compile(t, "input", inputStr)
	want := compile(t, "expected output", outputStr)

	eng := engine.New(engine.Options{})
	want, _, _ = eng.Reduce(ctx, want, Budget)

	start := time.Now()
	got, _, ok := eng.Reduce(ctx, in, Budget)
	elapsed := time.Since(start)
	if !ok {
		t.Fatalf("%s: budget exhausted at %s", testName, lambda.Format(got))
	}
	if got != want {
		t.Errorf("Mismatch in %s:\nInput:    %s\nExpected: %s\nActual:   %s",
			testName, inputStr, lambda.Format(want), lambda.Format(got))
	}

	g := graph.New(graph.Options{})
	root := g.FromTerm(in)
	g.Reduce(ctx, root, Budget)
	g.Collect(root)
	fromGraph, err := g.ToTerm(root)
	if err != nil {
		t.Fatalf("%s: graph readback: %v", testName, err)
	}
	if fromGraph != got {
		t.Errorf("%s: graph %s, engine %s", testName, lambda.Format(fromGraph), lambda.Format(got))
	}

	stats := eng.Stats()
	t.Logf("%s: %d reductions in %v, %d graph rewrites", testName, stats.TotalSteps, elapsed, g.GetStats().TotalSteps)
}

// CheckDivergence checks that input exhausts every budget it is given
// without failing.
func CheckDivergence(t *testing.T, testName string, inputStr string) {
	ctx := context.Background()
	in := compile(t, "input", inputStr)

	eng := engine.New(engine.Options{})
	if out, remaining, ok := eng.Reduce(ctx, in, 200); ok {
		t.Errorf("%s: engine stopped at %s with budget %d left", testName, lambda.Format(out), remaining)
	}

	g := graph.New(graph.Options{})
	root := g.FromTerm(in)
	if remaining := g.Reduce(ctx, root, 200); remaining != 0 {
		t.Errorf("%s: graph stopped with budget %d left", testName, remaining)
	}
}
