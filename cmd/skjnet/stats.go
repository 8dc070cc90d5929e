package main

import (
	"fmt"
	"io"
	"time"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/graph"
)

type ruleCount struct {
	name  string
	count uint64
}

func printCounts(w io.Writer, counts []ruleCount, total uint64, elapsed time.Duration) {
	secs := elapsed.Seconds()
	rate := func(n uint64) float64 {
		if secs == 0 {
			return 0
		}
		return float64(n) / secs
	}
	fmt.Fprintf(w, "\nStats:\n")
	fmt.Fprintf(w, "  Time: %v\n", elapsed)
	fmt.Fprintf(w, "  Total Reductions: %d (%.2f ops/sec)\n", total, rate(total))
	for _, c := range counts {
		if c.count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-8s %8d (%.2f ops/sec)\n", c.name+":", c.count, rate(c.count))
	}
}

func printBudget(w io.Writer, remaining int, normal bool) {
	switch {
	case !normal:
		fmt.Fprintf(w, "  Budget: exhausted, result is partial\n")
	case remaining == engine.Unbounded:
		fmt.Fprintf(w, "  Budget: unbounded\n")
	default:
		fmt.Fprintf(w, "  Budget: %d remaining\n", remaining)
	}
}

func printEngineStats(w io.Writer, s engine.Stats, elapsed time.Duration, remaining int, normal bool) {
	printCounts(w, []ruleCount{
		{"I", s.I}, {"K", s.K}, {"B", s.B}, {"C", s.C}, {"S", s.S}, {"J", s.J},
		{"Absorb", s.Absorb}, {"Join", s.Join}, {"Beta", s.Beta}, {"Reflect", s.Reflect},
		{"Eta", s.Eta}, {"Memo", s.MemoHits},
	}, s.TotalSteps, elapsed)
	printBudget(w, remaining, normal)
}

func printGraphStats(w io.Writer, s graph.Stats, elapsed time.Duration, remaining int, normal bool, nodes int) {
	printCounts(w, []ruleCount{
		{"I", s.I}, {"K", s.K}, {"B", s.B}, {"C", s.C}, {"S", s.S}, {"J", s.J},
		{"Absorb", s.Absorb}, {"Join", s.Join}, {"Beta", s.Beta}, {"Reflect", s.Reflect},
		{"Copies", s.Copies}, {"Erased", s.Erased},
	}, s.TotalSteps, elapsed)
	printBudget(w, remaining, normal)
	fmt.Fprintf(w, "  Nodes: %d\n", nodes)
}
