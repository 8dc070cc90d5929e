package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	// reduceSteps counts fired rules by name.
	reduceSteps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "skjnet_reduce_steps_total",
		Help: "Total reduction rules fired by rule",
	}, []string{"rule"})

	// reduceExhausted counts reductions that ran out of budget.
	reduceExhausted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skjnet_reduce_exhausted_total",
		Help: "Total reductions stopped by budget exhaustion",
	})

	reduceMemoHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skjnet_reduce_memo_hits_total",
		Help: "Total normal forms served from the memo table",
	})
)

var tracer = otel.Tracer("skjnet.engine")
