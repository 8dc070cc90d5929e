package graph

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var (
	graphSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skjnet_graph_steps_total",
			Help: "Graph rewrites by rule",
		},
		[]string{"rule"},
	)

	graphCollected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skjnet_graph_collected_total",
		Help: "Graph nodes turned into tombstones by collection",
	})
)

var tracer = otel.Tracer("skjnet.graph")
