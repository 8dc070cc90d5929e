package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skjnet.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
reduce:
  budget: -1
  memoize: true
decide:
  approx_depth: 2
graph:
  trace_capacity: 64
log:
  level: debug
  format: json
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Reduce.Budget)
	assert.True(t, cfg.Reduce.Memoize)
	assert.Equal(t, 2, cfg.Decide.ApproxDepth)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, Default().Decide.MaxDepth, cfg.Decide.MaxDepth)
	assert.Equal(t, 64, cfg.Graph.TraceCapacity)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skjnet.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"reduce": {"budget": 42}}`), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, cfg.Reduce.Budget)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reduce: [1, 2"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SKJNET_REDUCE_BUDGET":        "77",
		"SKJNET_REDUCE_MEMOIZE":       "true",
		"SKJNET_DECIDE_MAX_DEPTH":     "not a number",
		"SKJNET_LOG_LEVEL":            "warn",
		"SKJNET_METRICS_ENABLED":      "1",
		"SKJNET_GRAPH_TRACE_CAPACITY": "8",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.Equal(t, 77, cfg.Reduce.Budget)
	assert.True(t, cfg.Reduce.Memoize)
	assert.Equal(t, Default().Decide.MaxDepth, cfg.Decide.MaxDepth)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8, cfg.Graph.TraceCapacity)
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Reduce.Budget = -5
	cfg.Decide.MaxDepth = 0
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	assert.Len(t, merr.Errors, 4)
}

func TestValidateBudgets(t *testing.T) {
	for _, b := range []int{0, -2} {
		cfg := Default()
		cfg.Reduce.Budget = b
		assert.Error(t, cfg.Validate(), "reduce.budget %d", b)

		cfg = Default()
		cfg.Graph.Budget = b
		assert.Error(t, cfg.Validate(), "graph.budget %d", b)
	}
	cfg := Default()
	cfg.Reduce.Budget = -1
	cfg.Graph.Budget = 1
	assert.NoError(t, cfg.Validate())
}

func TestOptions(t *testing.T) {
	cfg := Default()
	cfg.Decide.ApproxDepth = 0
	cfg.Graph.TraceCapacity = 4
	cfg.Metrics.Enabled = true

	assert.Equal(t, -1, cfg.OrderOptions(nil).ApproxDepth)
	assert.True(t, cfg.EngineOptions(nil).Metrics)

	g := cfg.NewGraph(nil)
	assert.NotNil(t, g.TraceSnapshot())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	log.Info("hidden")
	log.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
