// Package graph is the mutable, sharing and cycle capable counterpart of the
// term layer. Nodes live in an arena and refer to each other by index, so a
// back edge is just an index cycle. A rewrite replaces the content of one node
// in place and every parent observes the result, which gives call-by-need
// sharing.
package graph

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/term"
)

// NodeType identifies the kind of a node.
type NodeType int

const (
	NodeTypeAtom  NodeType = iota // opaque leaf: combinator, free variable, quote
	NodeTypeVar                   // variable bound by an Abs node
	NodeTypeApp                   // lhs applied to rhs
	NodeTypeAbs                   // binder: lhs is the Var node, rhs the body
	NodeTypeJoin                  // lhs | rhs
	NodeTypeCopy                  // indirection to lhs, left behind by rewrites
	NodeTypeErase                 // collected node
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeAtom:
		return "Atom"
	case NodeTypeVar:
		return "Var"
	case NodeTypeApp:
		return "App"
	case NodeTypeAbs:
		return "Abs"
	case NodeTypeJoin:
		return "Join"
	case NodeTypeCopy:
		return "Copy"
	case NodeTypeErase:
		return "Erase"
	default:
		return "Unknown"
	}
}

// NodeID is the index of a node in its graph.
type NodeID int32

// None is the invalid NodeID.
const None NodeID = -1

type node struct {
	typ  NodeType
	leaf *term.Term // Atom leaf; Var name as an NVar
	lhs  NodeID
	rhs  NodeID
}

// Options configure a Graph.
type Options struct {
	// Metrics enables prometheus counters.
	Metrics bool
	Logger  *slog.Logger
}

// Graph is an arena of nodes. Every exported method takes the graph lock, so
// a single graph may be shared between goroutines, but a rewrite sequence is
// only meaningful for one owner at a time.
type Graph struct {
	mu    sync.Mutex
	nodes []node
	opts  Options
	log   *slog.Logger

	steps  [numRules]uint64
	copies uint64
	erased uint64

	traceBuf []TraceEvent
	traceCap uint64
	traceIdx uint64
	traceOn  uint32
}

const numRules = int(engine.RuleEqual) + 1

// Stats holds rewrite statistics.
type Stats struct {
	TotalSteps uint64
	I          uint64
	K          uint64
	B          uint64
	C          uint64
	S          uint64
	J          uint64
	Absorb     uint64
	Join       uint64
	Beta       uint64
	Reflect    uint64
	// Copies counts arguments shared by S instead of duplicated.
	Copies uint64
	// Erased counts nodes turned into tombstones by Collect.
	Erased uint64
}

// New returns an empty graph.
func New(opts Options) *Graph {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Graph{opts: opts, log: log.With("component", "graph")}
}

// GetStats returns a snapshot of the counters.
func (g *Graph) GetStats() Stats {
	load := func(r engine.Rule) uint64 { return atomic.LoadUint64(&g.steps[r]) }
	s := Stats{
		I:       load(engine.RuleI),
		K:       load(engine.RuleK),
		B:       load(engine.RuleB),
		C:       load(engine.RuleC),
		S:       load(engine.RuleS),
		J:       load(engine.RuleJ),
		Absorb:  load(engine.RuleAbsorb),
		Join:    load(engine.RuleJoin),
		Beta:    load(engine.RuleBeta),
		Reflect: load(engine.RuleEval) + load(engine.RuleQQuote) + load(engine.RuleQApp),
		Copies:  atomic.LoadUint64(&g.copies),
		Erased:  atomic.LoadUint64(&g.erased),
	}
	for r := 0; r < numRules; r++ {
		s.TotalSteps += atomic.LoadUint64(&g.steps[r])
	}
	return s
}

// Len is the number of nodes ever allocated, tombstones included.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

func (g *Graph) add(n node) NodeID {
	g.nodes = append(g.nodes, n)
	return NodeID(len(g.nodes) - 1)
}

func (g *Graph) check(id NodeID) {
	if id < 0 || int(id) >= len(g.nodes) {
		panic(fmt.Sprintf("graph: node %d out of range", id))
	}
}

// NewAtom adds a leaf node. Any term may be a leaf; it is treated as opaque
// by rewriting unless it is a combinator atom or an ABS or FUN term, which
// is applied to its argument on the term.
func (g *Graph) NewAtom(t *term.Term) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.add(node{typ: NodeTypeAtom, leaf: t, lhs: None, rhs: None})
}

// NewVar adds a variable to be bound by NewAbs.
func (g *Graph) NewVar(name string) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.add(node{typ: NodeTypeVar, leaf: term.NVar(name), lhs: None, rhs: None})
}

// NewApp adds an application node.
func (g *Graph) NewApp(fun, arg NodeID) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(fun)
	g.check(arg)
	return g.add(node{typ: NodeTypeApp, lhs: fun, rhs: arg})
}

// NewJoin adds a join node.
func (g *Graph) NewJoin(lhs, rhs NodeID) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(lhs)
	g.check(rhs)
	return g.add(node{typ: NodeTypeJoin, lhs: lhs, rhs: rhs})
}

// NewAbs adds a binder of v over body. v must be a Var node.
func (g *Graph) NewAbs(v, body NodeID) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(v)
	g.check(body)
	if g.nodes[v].typ != NodeTypeVar {
		panic(fmt.Sprintf("graph: binder %d is a %s, not a Var", v, g.nodes[v].typ))
	}
	return g.add(node{typ: NodeTypeAbs, lhs: v, rhs: body})
}

// Fix adds the node n = f n.
func (g *Graph) Fix(f NodeID) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(f)
	n := g.add(node{typ: NodeTypeApp, lhs: f})
	g.nodes[n].rhs = n
	return n
}

// SetLhs redirects the function (or left branch) edge of an App or Join node.
// Together with SetRhs it is the way to build cycles.
func (g *Graph) SetLhs(id, target NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setEdge(id, target, true)
}

// SetRhs redirects the argument (or right branch) edge of an App or Join node.
func (g *Graph) SetRhs(id, target NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.setEdge(id, target, false)
}

func (g *Graph) setEdge(id, target NodeID, left bool) {
	g.check(id)
	g.check(target)
	n := &g.nodes[id]
	if n.typ != NodeTypeApp && n.typ != NodeTypeJoin {
		panic(fmt.Sprintf("graph: cannot set an edge of a %s node", n.typ))
	}
	if left {
		n.lhs = target
	} else {
		n.rhs = target
	}
}

// Type returns the type of the node id resolves to.
func (g *Graph) Type(id NodeID) NodeType {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[g.deref(id)].typ
}

// Leaf returns the term of an Atom node, or the name of a Var node as an
// NVar. It is nil for other nodes.
func (g *Graph) Leaf(id NodeID) *term.Term {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes[g.deref(id)].leaf
}

// Children returns the two edges of the node id resolves to.
func (g *Graph) Children(id NodeID) (NodeID, NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := g.nodes[g.deref(id)]
	return n.lhs, n.rhs
}

// Resolve follows Copy indirections.
func (g *Graph) Resolve(id NodeID) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.deref(id)
}

// deref follows Copy nodes and compresses the path. A cycle of Copy nodes
// is the equation x = x whose least solution is BOT.
func (g *Graph) deref(id NodeID) NodeID {
	g.check(id)
	if g.nodes[id].typ != NodeTypeCopy {
		return id
	}
	var path []NodeID
	on := make(map[NodeID]bool)
	cur := id
	for g.nodes[cur].typ == NodeTypeCopy {
		if on[cur] {
			for _, p := range path {
				g.nodes[p] = node{typ: NodeTypeAtom, leaf: term.BOT, lhs: None, rhs: None}
			}
			return cur
		}
		on[cur] = true
		path = append(path, cur)
		cur = g.nodes[cur].lhs
	}
	for _, p := range path {
		g.nodes[p].lhs = cur
	}
	return cur
}

// reachable lists the nodes reachable from root in preorder, function edges
// first. Copy nodes are skipped.
func (g *Graph) reachable(root NodeID) []NodeID {
	var order []NodeID
	seen := make(map[NodeID]bool)
	stack := []NodeID{root}
	for len(stack) > 0 {
		id := g.deref(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
		n := g.nodes[id]
		switch n.typ {
		case NodeTypeApp, NodeTypeJoin, NodeTypeAbs:
			stack = append(stack, n.rhs, n.lhs)
		}
	}
	return order
}
