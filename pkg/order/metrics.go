package order

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var decideTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "skjnet_decide_total",
	Help: "Total order decisions by operation and result",
}, []string{"op", "result"})

var tracer = otel.Tracer("skjnet.order")
