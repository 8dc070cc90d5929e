package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vic/skjnet/pkg/codec"
	"github.com/vic/skjnet/pkg/term"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce [FILE]",
	Short: "Reduce a term to normal form",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTerm(args)
		if err != nil {
			return err
		}
		// The decider installs itself as the oracle for LESS and EQUAL.
		eng := newDecider().Engine()

		start := time.Now()
		out, remaining, normal := eng.Reduce(cmd.Context(), t, budget(cfg.Reduce.Budget))
		elapsed := time.Since(start)

		printTerm(cmd.OutOrStdout(), out)
		if showStats {
			printEngineStats(os.Stderr, eng.Stats(), elapsed, remaining, normal)
		}
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph [FILE]",
	Short: "Reduce a term as a shared graph",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTerm(args)
		if err != nil {
			return err
		}
		g := cfg.NewGraph(logger)
		root := g.FromTerm(t)

		start := time.Now()
		remaining := g.Reduce(cmd.Context(), root, budget(cfg.Graph.Budget))
		elapsed := time.Since(start)
		g.Collect(root)

		out, err := g.ToTerm(root)
		if err != nil {
			return err
		}
		printTerm(cmd.OutOrStdout(), out)
		if showStats {
			printGraphStats(os.Stderr, g.GetStats(), elapsed, remaining, g.IsNormal(root), g.Len())
			for _, ev := range g.TraceSnapshot() {
				fmt.Fprintf(os.Stderr, "  #%-4d %-8s node %d (head %s %d)\n", ev.Step, ev.Rule, ev.Node, ev.HeadType, ev.Head)
			}
		}
		return nil
	},
}

var lessCmd = &cobra.Command{
	Use:   "less X Y",
	Short: "Decide X ⊑ Y in the Scott order",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := parsePair(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), newDecider().TryDecideLess(cmd.Context(), x, y))
		return nil
	},
}

var equalCmd = &cobra.Command{
	Use:   "equal X Y",
	Short: "Decide X ≡ Y",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x, y, err := parsePair(args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), newDecider().TryDecideEqual(cmd.Context(), x, y))
		return nil
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode TYPE JSON",
	Short: "Encode a JSON value as a term of TYPE",
	Long: `Encode a JSON value as a term. TYPE is a descriptor such as num,
(list bool) or (prod bool num). Products are two element arrays, sums are
{"left": v} or {"right": v}, optional values are null or the value, and
bytes are strings.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ty, err := codec.ParseType(args[0])
		if err != nil {
			return err
		}
		var raw any
		if err := json.Unmarshal([]byte(args[1]), &raw); err != nil {
			return fmt.Errorf("parse value: %w", err)
		}
		v, err := fromJSON(ty, raw)
		if err != nil {
			return err
		}
		t, err := codec.Encode(ty, v)
		if err != nil {
			return err
		}
		printTerm(cmd.OutOrStdout(), t)
		return nil
	},
}

var decodeCmd = &cobra.Command{
	Use:   "decode TYPE [FILE]",
	Short: "Reduce a term and decode it as a JSON value of TYPE",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ty, err := codec.ParseType(args[0])
		if err != nil {
			return err
		}
		t, err := readTerm(args[1:])
		if err != nil {
			return err
		}
		c := codec.New(newDecider(), codec.Options{Budget: budget(codec.DefaultBudget), Logger: logger})
		v, err := c.Decode(cmd.Context(), ty, t)
		if err != nil {
			return err
		}
		out, err := json.Marshal(toJSON(ty, v))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump [FILE]",
	Short: "Write the binary serialization of a term to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := readTerm(args)
		if err != nil {
			return err
		}
		return term.Encode(cmd.OutOrStdout(), t)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load [FILE]",
	Short: "Read binary serialized terms and print them",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args)
		if err != nil {
			return err
		}
		t, err := term.Load(data)
		if err != nil {
			return err
		}
		printTerm(cmd.OutOrStdout(), t)
		return nil
	},
}

func parsePair(args []string) (*term.Term, *term.Term, error) {
	x, err := parseTerm(args[0])
	if err != nil {
		return nil, nil, err
	}
	y, err := parseTerm(args[1])
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}
