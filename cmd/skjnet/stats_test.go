package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vic/skjnet/pkg/engine"
)

func TestPrintBudget(t *testing.T) {
	tests := []struct {
		remaining int
		normal    bool
		want      string
	}{
		{0, true, "Budget: 0 remaining"},
		{0, false, "exhausted"},
		{engine.Unbounded, true, "unbounded"},
		{engine.Unbounded, false, "exhausted"},
		{7, true, "7 remaining"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		printBudget(&buf, tt.remaining, tt.normal)
		assert.Contains(t, buf.String(), tt.want)
	}
}

func TestCheckBudget(t *testing.T) {
	assert.NoError(t, checkBudget(false, 0))
	assert.NoError(t, checkBudget(true, 1))
	assert.NoError(t, checkBudget(true, engine.Unbounded))
	assert.Error(t, checkBudget(true, 0))
	assert.Error(t, checkBudget(true, -5))
}
