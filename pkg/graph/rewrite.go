package graph

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vic/skjnet/pkg/engine"
	"github.com/vic/skjnet/pkg/term"
)

// spine returns the head of the application spine at id and the App nodes
// of the spine, outermost first.
func (g *Graph) spine(id NodeID) (NodeID, []NodeID) {
	var apps []NodeID
	seen := make(map[NodeID]bool)
	cur := g.deref(id)
	for g.nodes[cur].typ == NodeTypeApp && !seen[cur] {
		seen[cur] = true
		apps = append(apps, cur)
		cur = g.deref(g.nodes[cur].lhs)
	}
	return cur, apps
}

// redex returns the node of the spine at id that the head rule rewrites.
func (g *Graph) redex(id NodeID) (NodeID, bool) {
	head, apps := g.spine(id)
	k := len(apps)
	if k == 0 {
		return None, false
	}
	h := g.nodes[head]
	switch h.typ {
	case NodeTypeAtom:
		switch {
		case h.leaf == term.TOP || h.leaf == term.BOT:
			return apps[0], true
		case h.leaf.Kind() == term.KindAbs || h.leaf.Kind() == term.KindFun:
			return apps[k-1], true
		case h.leaf.Kind() != term.KindAtom || h.leaf.Arity() == 0 || k < h.leaf.Arity():
			return None, false
		case h.leaf == term.LESS || h.leaf == term.EQUAL:
			return None, false
		}
		a := apps[k-h.leaf.Arity()]
		if h.leaf.IsReflective() && !g.quotedArgs(a, h.leaf.Arity()) {
			return None, false
		}
		return a, true
	case NodeTypeAbs, NodeTypeJoin:
		return apps[k-1], true
	}
	return None, false
}

// quotedArgs reports whether the n arguments ending at a are quote leaves.
func (g *Graph) quotedArgs(a NodeID, n int) bool {
	for i := 0; i < n; i++ {
		arg := g.nodes[g.deref(g.nodes[a].rhs)]
		if arg.typ != NodeTypeAtom || arg.leaf.Kind() != term.KindQuote {
			return false
		}
		a = g.deref(g.nodes[a].lhs)
	}
	return true
}

// args returns the n arguments whose outermost application is a, first
// argument first.
func (g *Graph) args(a NodeID, n int) []NodeID {
	out := make([]NodeID, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = g.nodes[a].rhs
		a = g.deref(g.nodes[a].lhs)
	}
	return out
}

// TryBetaStep performs the head rewrite of the application spine at id, if
// there is one, and reports whether it did. LESS and EQUAL never fire on
// graphs.
func (g *Graph) TryBetaStep(id NodeID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.redex(id)
	if !ok {
		return false
	}
	return g.fire(a)
}

// fire rewrites the redex rooted at App node a in place.
func (g *Graph) fire(a NodeID) bool {
	head, apps := g.spine(a)
	h := g.nodes[head]
	k := len(apps)

	switch h.typ {
	case NodeTypeAbs:
		x := g.nodes[apps[k-1]].rhs
		body := g.instantiate(h.lhs, h.rhs, x)
		g.become(a, node{typ: NodeTypeCopy, lhs: body, rhs: None})
		g.count(engine.RuleBeta, a, head)
		return true

	case NodeTypeJoin:
		x := g.nodes[a].rhs
		l := g.add(node{typ: NodeTypeApp, lhs: h.lhs, rhs: x})
		r := g.add(node{typ: NodeTypeApp, lhs: h.rhs, rhs: x})
		g.become(a, node{typ: NodeTypeJoin, lhs: l, rhs: r})
		g.count(engine.RuleJoin, a, head)
		return true
	}

	if kind := h.leaf.Kind(); kind == term.KindAbs || kind == term.KindFun {
		if !g.applyLeaf(a, h.leaf) {
			return false
		}
		g.count(engine.RuleBeta, a, head)
		return true
	}

	switch h.leaf {
	case term.TOP, term.BOT:
		g.become(a, node{typ: NodeTypeAtom, leaf: h.leaf, lhs: None, rhs: None})
		g.count(engine.RuleAbsorb, a, head)
		return true
	}

	args := g.args(a, h.leaf.Arity())
	var rule engine.Rule
	switch h.leaf {
	case term.I:
		rule = engine.RuleI
		g.become(a, node{typ: NodeTypeCopy, lhs: args[0], rhs: None})
	case term.K:
		rule = engine.RuleK
		g.become(a, node{typ: NodeTypeCopy, lhs: args[0], rhs: None})
	case term.B:
		rule = engine.RuleB
		yz := g.add(node{typ: NodeTypeApp, lhs: args[1], rhs: args[2]})
		g.become(a, node{typ: NodeTypeApp, lhs: args[0], rhs: yz})
	case term.C:
		rule = engine.RuleC
		xz := g.add(node{typ: NodeTypeApp, lhs: args[0], rhs: args[2]})
		g.become(a, node{typ: NodeTypeApp, lhs: xz, rhs: args[1]})
	case term.S:
		rule = engine.RuleS
		// z is shared by both branches, never duplicated.
		xz := g.add(node{typ: NodeTypeApp, lhs: args[0], rhs: args[2]})
		yz := g.add(node{typ: NodeTypeApp, lhs: args[1], rhs: args[2]})
		g.become(a, node{typ: NodeTypeApp, lhs: xz, rhs: yz})
		g.copies++
	case term.J:
		rule = engine.RuleJ
		g.become(a, node{typ: NodeTypeJoin, lhs: args[0], rhs: args[1]})
	case term.EVAL:
		rule = engine.RuleEval
		body := g.fromTerm(g.quoted(args[0]), scope{}, make(map[*term.Term]NodeID))
		g.become(a, node{typ: NodeTypeCopy, lhs: body, rhs: None})
	case term.QQUOTE:
		rule = engine.RuleQQuote
		q := term.Quote(term.Quote(g.quoted(args[0])))
		g.become(a, node{typ: NodeTypeAtom, leaf: q, lhs: None, rhs: None})
	case term.QAPP:
		rule = engine.RuleQApp
		q := term.Quote(term.App(g.quoted(args[0]), g.quoted(args[1])))
		g.become(a, node{typ: NodeTypeAtom, leaf: q, lhs: None, rhs: None})
	default:
		return false
	}
	g.count(rule, a, head)
	return true
}

// applyLeaf rewrites a, whose head is a binder kept as a term, to the body
// with the argument of a read back and substituted. Var nodes of the argument
// travel through the term under their own names and are reconnected after;
// when one of them would end up under a quote or inside a binder kept as a
// term, nothing is rewritten and the redex stays.
func (g *Graph) applyLeaf(a NodeID, fn *term.Term) bool {
	arg := g.nodes[a].rhs
	free := make(map[NodeID]*term.Term)
	sc := scope{named: make(map[string]NodeID)}
	for _, id := range g.reachable(arg) {
		if g.nodes[id].typ == NodeTypeVar {
			v := term.NVar(fmt.Sprintf("_g%d", id))
			free[id] = v
			sc.named[v.Name()] = id
		}
	}
	x, err := g.newReader(free).read(arg, nil)
	if err != nil {
		return false
	}
	for name := range sc.named {
		if !x.HasFree(name) {
			delete(sc.named, name)
		}
	}
	var body *term.Term
	if fn.Kind() == term.KindFun {
		body = term.SubstVar(fn.Body(), fn.Var().Name(), x)
	} else {
		body = term.Subst(fn.Body(), x)
	}
	for name := range sc.named {
		if body.HasQuoted(name) || leafMentions(body, name) {
			return false
		}
	}
	id := g.fromTerm(body, sc, make(map[*term.Term]NodeID))
	g.become(a, node{typ: NodeTypeCopy, lhs: id, rhs: None})
	return true
}

// leafMentions reports whether name occurs free in a binder of t that
// FromTerm keeps as a leaf.
func leafMentions(t *term.Term, name string) bool {
	if !t.HasFree(name) {
		return false
	}
	switch t.Kind() {
	case term.KindApp:
		return leafMentions(t.Fun(), name) || leafMentions(t.Arg(), name)
	case term.KindJoin:
		return leafMentions(t.Lhs(), name) || leafMentions(t.Rhs(), name)
	case term.KindAbs, term.KindFun:
		return quotesBound(t) || leafMentions(t.Body(), name)
	case term.KindLet:
		if fn := term.Fun(t.Var(), t.Body()); quotesBound(fn) {
			return fn.HasFree(name) || leafMentions(t.Defn(), name)
		}
		return leafMentions(t.Defn(), name) || leafMentions(t.Body(), name)
	}
	return false
}

func (g *Graph) quoted(id NodeID) *term.Term {
	return g.nodes[g.deref(id)].leaf.Body()
}

func (g *Graph) become(id NodeID, n node) {
	g.nodes[id] = n
}

func (g *Graph) count(r engine.Rule, a, head NodeID) {
	g.steps[r]++
	if g.opts.Metrics {
		graphSteps.WithLabelValues(r.String()).Inc()
	}
	g.recordTrace(r, a, head)
}

// instantiate returns body with v replaced by x. Nodes that cannot reach v
// are shared with the original body; the rest is copied, including any
// binder whose scope is copied along.
func (g *Graph) instantiate(v, body, x NodeID) NodeID {
	order := g.reachable(body)
	parents := make(map[NodeID][]NodeID)
	for _, id := range order {
		n := g.nodes[id]
		switch n.typ {
		case NodeTypeApp, NodeTypeJoin:
			l, r := g.deref(n.lhs), g.deref(n.rhs)
			parents[l] = append(parents[l], id)
			if r != l {
				parents[r] = append(parents[r], id)
			}
		case NodeTypeAbs:
			b := g.deref(n.rhs)
			parents[b] = append(parents[b], id)
		}
	}

	dirty := make(map[NodeID]bool)
	work := []NodeID{v}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if dirty[id] {
			continue
		}
		if n := g.nodes[id]; n.typ == NodeTypeAbs {
			// The binder of v itself is closed in v.
			if n.lhs == v {
				continue
			}
			work = append(work, n.lhs)
		}
		dirty[id] = true
		work = append(work, parents[id]...)
	}
	root := g.deref(body)
	if !dirty[root] {
		return root
	}

	remap := map[NodeID]NodeID{v: x}
	for _, id := range order {
		if dirty[id] && id != v {
			remap[id] = g.add(g.nodes[id])
		}
	}
	edge := func(e NodeID) NodeID {
		if m, ok := remap[g.deref(e)]; ok {
			return m
		}
		return e
	}
	for old, fresh := range remap {
		if old == v {
			continue
		}
		n := &g.nodes[fresh]
		switch n.typ {
		case NodeTypeApp, NodeTypeJoin, NodeTypeAbs:
			n.lhs, n.rhs = edge(n.lhs), edge(n.rhs)
		}
	}
	return remap[root]
}

// findRedex returns the first redex in preorder from root, which is the
// leftmost outermost one.
func (g *Graph) findRedex(root NodeID) (NodeID, bool) {
	for _, id := range g.reachable(root) {
		if g.nodes[id].typ != NodeTypeApp {
			continue
		}
		if a, ok := g.redex(id); ok && a == id {
			return id, true
		}
	}
	return None, false
}

// IsNormal reports whether no redex is reachable from root.
func (g *Graph) IsNormal(root NodeID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.findRedex(root)
	return !ok
}

// Reduce rewrites the graph reachable from root in leftmost outermost order
// until no redex is left or the budget runs out, and returns the remaining
// budget. A negative budget is unbounded. Cyclic graphs that are already in
// normal form, like streams, are a fixed point and return immediately.
func (g *Graph) Reduce(ctx context.Context, root NodeID, budget int) int {
	_, span := tracer.Start(ctx, "graph.Reduce",
		trace.WithAttributes(attribute.Int("budget", budget)),
	)
	defer span.End()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(root)

	steps := 0
	for budget != 0 {
		a, ok := g.findRedex(root)
		if !ok {
			break
		}
		if !g.fire(a) {
			break
		}
		steps++
		if budget > 0 {
			budget--
		}
	}
	if budget == 0 {
		if _, ok := g.findRedex(root); ok {
			g.log.Debug("budget exhausted", "steps", steps, "nodes", len(g.nodes))
		}
	}
	span.SetAttributes(attribute.Int("steps", steps), attribute.Int("nodes", len(g.nodes)))
	return budget
}
