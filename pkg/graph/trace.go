package graph

import (
	"sync/atomic"

	"github.com/vic/skjnet/pkg/engine"
)

// TraceEvent records one rewrite: the rule, the rewritten node and the head
// that selected the rule.
type TraceEvent struct {
	Step     uint64
	Rule     engine.Rule
	Node     NodeID
	HeadType NodeType
	Head     NodeID
}

// EnableTrace keeps the first capacity rewrites from now on.
func (g *Graph) EnableTrace(capacity int) {
	if capacity <= 0 {
		capacity = 1
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.traceBuf = make([]TraceEvent, capacity)
	g.traceCap = uint64(capacity)
	atomic.StoreUint64(&g.traceIdx, 0)
	atomic.StoreUint32(&g.traceOn, 1)
}

func (g *Graph) DisableTrace() {
	atomic.StoreUint32(&g.traceOn, 0)
}

func (g *Graph) TraceSnapshot() []TraceEvent {
	if atomic.LoadUint32(&g.traceOn) == 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	count := atomic.LoadUint64(&g.traceIdx)
	if count > g.traceCap {
		count = g.traceCap
	}
	res := make([]TraceEvent, count)
	copy(res, g.traceBuf[:count])
	return res
}

func (g *Graph) recordTrace(rule engine.Rule, id, head NodeID) {
	if atomic.LoadUint32(&g.traceOn) == 0 || g.traceCap == 0 {
		return
	}
	idx := atomic.AddUint64(&g.traceIdx, 1) - 1
	if idx >= g.traceCap {
		return
	}
	g.traceBuf[idx] = TraceEvent{
		Step:     idx,
		Rule:     rule,
		Node:     id,
		HeadType: g.nodes[head].typ,
		Head:     head,
	}
}
