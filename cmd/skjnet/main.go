package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vic/skjnet/pkg/config"
	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/lambda"
	"github.com/vic/skjnet/pkg/order"
	"github.com/vic/skjnet/pkg/term"
)

var (
	configPath string
	syntaxName string
	budgetFlag int
	budgetSet  bool
	showStats  bool

	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skjnet",
	Short: "Reduce and compare SKJ combinator terms",
	Long: `skjnet reduces terms of the SKJ calculus with TOP and BOT, on interned
terms or on shared graphs, decides the Scott order between terms and
converts data to and from terms.

Terms are read from a file argument or stdin, in one of the notations:
  lambda  f: x: f (f x)       (default)
  polish  APP APP K x y
  sexpr   (K x y)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		budgetSet = cmd.Flags().Changed("budget")
		if err := checkBudget(budgetSet, budgetFlag); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger = config.NewLogger(cfg.Log, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().StringVarP(&syntaxName, "syntax", "s", string(lambda.SyntaxLambda), "term notation: lambda, polish or sexpr")
	rootCmd.PersistentFlags().IntVarP(&budgetFlag, "budget", "b", 0, "step budget, positive or -1 for unbounded (default from config)")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", true, "print statistics to stderr")

	rootCmd.AddCommand(reduceCmd, graphCmd, lessCmd, equalCmd, encodeCmd, decodeCmd, dumpCmd, loadCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func syntax() lambda.Syntax {
	return lambda.Syntax(syntaxName)
}

// checkBudget rejects budgets that allow no step at all.
func checkBudget(set bool, b int) error {
	if set && b != engine.Unbounded && b < 1 {
		return fmt.Errorf("--budget must be positive or %d for unbounded, got %d", engine.Unbounded, b)
	}
	return nil
}

// budget returns the flag value, or def when the flag is unset.
func budget(def int) int {
	if budgetSet {
		return budgetFlag
	}
	return def
}

// readInput reads the file named by the first argument, or stdin.
func readInput(args []string) ([]byte, error) {
	if len(args) > 0 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("reading file: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return data, nil
}

func parseTerm(src string) (*term.Term, error) {
	return lambda.ParseSyntax(syntax(), strings.TrimSpace(src))
}

func readTerm(args []string) (*term.Term, error) {
	data, err := readInput(args)
	if err != nil {
		return nil, err
	}
	return parseTerm(string(data))
}

func printTerm(w io.Writer, t *term.Term) {
	switch syntax() {
	case lambda.SyntaxSexpr:
		fmt.Fprintln(w, lambda.PrintSexpr(t))
	case lambda.SyntaxLambda:
		fmt.Fprintln(w, lambda.Format(t))
	default:
		fmt.Fprintln(w, lambda.PrintPolish(t))
	}
}

func newEngine() *engine.Engine {
	return engine.New(cfg.EngineOptions(logger))
}

func newDecider() *order.Decider {
	return order.New(newEngine(), cfg.OrderOptions(logger))
}
