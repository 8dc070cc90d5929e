// Package config loads the settings of the reduction and decision
// components. Priority is environment, then file, then defaults.
package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	errwrap "github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/graph"
	"github.com/vic/skjnet/pkg/order"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKJNET_"

// Config is the top-level configuration.
type Config struct {
	Reduce  ReduceConfig  `json:"reduce" yaml:"reduce"`
	Decide  DecideConfig  `json:"decide" yaml:"decide"`
	Graph   GraphConfig   `json:"graph" yaml:"graph"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
}

// ReduceConfig configures the term engine.
type ReduceConfig struct {
	// Budget is the default step budget: positive, or -1 for unbounded.
	Budget        int  `json:"budget" yaml:"budget"`
	MaxComplexity int  `json:"max_complexity" yaml:"max_complexity"`
	Memoize       bool `json:"memoize" yaml:"memoize"`
}

// DecideConfig configures order decisions.
type DecideConfig struct {
	Budget      int `json:"budget" yaml:"budget"`
	MaxDepth    int `json:"max_depth" yaml:"max_depth"`
	MaxGoals    int `json:"max_goals" yaml:"max_goals"`
	ApproxDepth int `json:"approx_depth" yaml:"approx_depth"`
	MaxFrontier int `json:"max_frontier" yaml:"max_frontier"`
}

// GraphConfig configures graph reduction.
type GraphConfig struct {
	Budget int `json:"budget" yaml:"budget"`
	// TraceCapacity is the number of rewrites traced; zero disables tracing.
	TraceCapacity int `json:"trace_capacity" yaml:"trace_capacity"`
}

type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" yaml:"level"`
	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Reduce: ReduceConfig{
			Budget: 1000,
		},
		Decide: DecideConfig{
			Budget:      order.DefaultOptions.Budget,
			MaxDepth:    order.DefaultOptions.MaxDepth,
			MaxGoals:    order.DefaultOptions.MaxGoals,
			ApproxDepth: order.DefaultOptions.ApproxDepth,
			MaxFrontier: order.DefaultOptions.MaxFrontier,
		},
		Graph: GraphConfig{
			Budget: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errwrap.Wrapf(err, "read config %s", path)
		}
		if err := cfg.unmarshal(data); err != nil {
			return cfg, errwrap.Wrapf(err, "parse config %s", path)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, errwrap.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// unmarshal accepts YAML, and JSON as its subset written by other tools.
func (c *Config) unmarshal(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		if jsonErr := json.Unmarshal(data, c); jsonErr != nil {
			return errwrap.Wrapf(err, "yaml")
		}
	}
	return nil
}

// ApplyEnv overrides fields from SKJNET_* variables, for example
// SKJNET_REDUCE_BUDGET. Unparsable values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	intVar := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
			}
		}
	}
	boolVar := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	stringVar := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	intVar("REDUCE_BUDGET", &c.Reduce.Budget)
	intVar("REDUCE_MAX_COMPLEXITY", &c.Reduce.MaxComplexity)
	boolVar("REDUCE_MEMOIZE", &c.Reduce.Memoize)
	intVar("DECIDE_BUDGET", &c.Decide.Budget)
	intVar("DECIDE_MAX_DEPTH", &c.Decide.MaxDepth)
	intVar("DECIDE_MAX_GOALS", &c.Decide.MaxGoals)
	intVar("DECIDE_APPROX_DEPTH", &c.Decide.ApproxDepth)
	intVar("DECIDE_MAX_FRONTIER", &c.Decide.MaxFrontier)
	intVar("GRAPH_BUDGET", &c.Graph.Budget)
	intVar("GRAPH_TRACE_CAPACITY", &c.Graph.TraceCapacity)
	stringVar("LOG_LEVEL", &c.Log.Level)
	stringVar("LOG_FORMAT", &c.Log.Format)
	boolVar("METRICS_ENABLED", &c.Metrics.Enabled)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var result *multierror.Error
	// Zero would allow no step; -1 is the only non-positive budget.
	budget := func(name string, v int) {
		if v != engine.Unbounded && v < 1 {
			result = multierror.Append(result, errwrap.Errorf("%s must be positive or -1 for unbounded, got %d", name, v))
		}
	}
	positive := func(name string, v int) {
		if v < 1 {
			result = multierror.Append(result, errwrap.Errorf("%s must be >= 1, got %d", name, v))
		}
	}
	budget("reduce.budget", c.Reduce.Budget)
	budget("graph.budget", c.Graph.Budget)
	positive("decide.budget", c.Decide.Budget)
	positive("decide.max_depth", c.Decide.MaxDepth)
	positive("decide.max_goals", c.Decide.MaxGoals)
	positive("decide.max_frontier", c.Decide.MaxFrontier)
	if c.Reduce.MaxComplexity < 0 {
		result = multierror.Append(result, errwrap.Errorf("reduce.max_complexity must be >= 0, got %d", c.Reduce.MaxComplexity))
	}
	if c.Graph.TraceCapacity < 0 {
		result = multierror.Append(result, errwrap.Errorf("graph.trace_capacity must be >= 0, got %d", c.Graph.TraceCapacity))
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		result = multierror.Append(result, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		result = multierror.Append(result, errwrap.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	return result.ErrorOrNil()
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, errwrap.Errorf("log.level %q: want debug, info, warn or error", s)
	}
	return l, nil
}

// NewLogger builds the logger described by cfg, writing to w.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// EngineOptions returns the engine options of c.
func (c Config) EngineOptions(log *slog.Logger) engine.Options {
	return engine.Options{
		MaxComplexity: c.Reduce.MaxComplexity,
		Memoize:       c.Reduce.Memoize,
		Metrics:       c.Metrics.Enabled,
		Logger:        log,
	}
}

// OrderOptions returns the decider options of c.
func (c Config) OrderOptions(log *slog.Logger) order.Options {
	approx := c.Decide.ApproxDepth
	if approx == 0 {
		approx = -1
	}
	return order.Options{
		Budget:      c.Decide.Budget,
		MaxDepth:    c.Decide.MaxDepth,
		MaxGoals:    c.Decide.MaxGoals,
		ApproxDepth: approx,
		MaxFrontier: c.Decide.MaxFrontier,
		Metrics:     c.Metrics.Enabled,
		Logger:      log,
	}
}

// NewGraph returns a graph configured by c, tracing when a capacity is set.
func (c Config) NewGraph(log *slog.Logger) *graph.Graph {
	g := graph.New(graph.Options{Metrics: c.Metrics.Enabled, Logger: log})
	if c.Graph.TraceCapacity > 0 {
		g.EnableTrace(c.Graph.TraceCapacity)
	}
	return g
}
