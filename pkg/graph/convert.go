package graph

import (
	"errors"
	"fmt"

	errwrap "github.com/pkg/errors"

	"github.com/vic/skjnet/pkg/compiler"
	"github.com/vic/skjnet/pkg/term"
)

// ErrCyclic is returned when a cyclic graph is read back as a term.
var ErrCyclic = errors.New("graph is cyclic")

type scope struct {
	ivars []NodeID          // binders of ABS, innermost last
	named map[string]NodeID // binders of FUN and LET
}

// FromTerm builds the graph of t and returns its root. Closed subterms are
// built once and shared, so the graph is never larger than the term.
//
// Quotes are opaque leaves, so a binder whose variable occurs inside a quote
// cannot be split into Var and Abs nodes. Such a binder, and every binder
// around it, is kept whole as a leaf that only rewrites once applied, with
// its argument read back and substituted on the term.
func (g *Graph) FromTerm(t *term.Term) NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fromTerm(t, scope{}, make(map[*term.Term]NodeID))
}

func (g *Graph) leafNode(t *term.Term) NodeID {
	return g.add(node{typ: NodeTypeAtom, leaf: t, lhs: None, rhs: None})
}

func (g *Graph) fromTerm(t *term.Term, sc scope, memo map[*term.Term]NodeID) NodeID {
	closed := t.IsClosed()
	if closed {
		if id, ok := memo[t]; ok {
			return id
		}
	}
	var id NodeID
	switch t.Kind() {
	case term.KindIVar:
		depth := len(sc.ivars)
		if int(t.Rank()) < depth {
			return sc.ivars[depth-1-int(t.Rank())]
		}
		id = g.leafNode(term.IVar(t.Rank() - uint32(depth)))
	case term.KindNVar:
		if v, ok := sc.named[t.Name()]; ok {
			return v
		}
		id = g.leafNode(t)
	case term.KindApp:
		l := g.fromTerm(t.Fun(), sc, memo)
		r := g.fromTerm(t.Arg(), sc, memo)
		id = g.add(node{typ: NodeTypeApp, lhs: l, rhs: r})
	case term.KindJoin:
		l := g.fromTerm(t.Lhs(), sc, memo)
		r := g.fromTerm(t.Rhs(), sc, memo)
		id = g.add(node{typ: NodeTypeJoin, lhs: l, rhs: r})
	case term.KindAbs, term.KindFun:
		if quotesBound(t) {
			id = g.leafNode(t)
			break
		}
		if t.Kind() == term.KindFun {
			v, inner := g.bindNamed(t.Var(), sc)
			body := g.fromTerm(t.Body(), inner, memo)
			id = g.add(node{typ: NodeTypeAbs, lhs: v, rhs: body})
			break
		}
		v := g.add(node{typ: NodeTypeVar, leaf: term.NVar(fmt.Sprintf("v%d", len(sc.ivars))), lhs: None, rhs: None})
		inner := scope{ivars: append(sc.ivars[:len(sc.ivars):len(sc.ivars)], v), named: sc.named}
		body := g.fromTerm(t.Body(), inner, memo)
		id = g.add(node{typ: NodeTypeAbs, lhs: v, rhs: body})
	case term.KindLet:
		defn := g.fromTerm(t.Defn(), sc, memo)
		if fn := term.Fun(t.Var(), t.Body()); quotesBound(fn) {
			id = g.add(node{typ: NodeTypeApp, lhs: g.leafNode(fn), rhs: defn})
			break
		}
		v, inner := g.bindNamed(t.Var(), sc)
		body := g.fromTerm(t.Body(), inner, memo)
		abs := g.add(node{typ: NodeTypeAbs, lhs: v, rhs: body})
		id = g.add(node{typ: NodeTypeApp, lhs: abs, rhs: defn})
	default:
		// Atoms and quotes are opaque.
		id = g.leafNode(t)
	}
	if closed {
		memo[t] = id
	}
	return id
}

// quotesBound reports whether a binder of t, outside quotes, has its variable
// occur inside a quote.
func quotesBound(t *term.Term) bool {
	switch t.Kind() {
	case term.KindApp:
		return quotesBound(t.Fun()) || quotesBound(t.Arg())
	case term.KindJoin:
		return quotesBound(t.Lhs()) || quotesBound(t.Rhs())
	case term.KindAbs:
		name := term.Fresh("_q", t.Body())
		return term.Subst(t.Body(), term.NVar(name)).HasQuoted(name) || quotesBound(t.Body())
	case term.KindFun:
		return t.Body().HasQuoted(t.Var().Name()) || quotesBound(t.Body())
	case term.KindLet:
		return t.Body().HasQuoted(t.Var().Name()) || quotesBound(t.Defn()) || quotesBound(t.Body())
	}
	return false
}

func (g *Graph) bindNamed(v *term.Term, sc scope) (NodeID, scope) {
	id := g.add(node{typ: NodeTypeVar, leaf: v, lhs: None, rhs: None})
	named := make(map[string]NodeID, len(sc.named)+1)
	for k, n := range sc.named {
		named[k] = n
	}
	named[v.Name()] = id
	return id, scope{ivars: sc.ivars, named: named}
}

// A reading of a node depends on which Var nodes are bound around it, so
// memoized readings are keyed by the chain of enclosing binders.
type readKey struct {
	id  NodeID
	env int
}

type envKey struct {
	parent int
	binder NodeID
}

type reader struct {
	g      *Graph
	free   map[NodeID]*term.Term
	onPath map[NodeID]bool
	done   map[readKey]*term.Term
	envs   map[envKey]int
}

// ToTerm reads the graph at root back as a term. Abs binders become ABS and
// unbound Var nodes become named variables. A cycle is ErrCyclic.
func (g *Graph) ToTerm(root NodeID) (*term.Term, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(root)
	return g.newReader(nil).read(root, nil)
}

func (g *Graph) newReader(free map[NodeID]*term.Term) *reader {
	return &reader{
		g:      g,
		free:   free,
		onPath: make(map[NodeID]bool),
		done:   make(map[readKey]*term.Term),
		envs:   make(map[envKey]int),
	}
}

// enter returns the binder chain env extended with b. The empty chain is 0.
func (r *reader) enter(env int, b NodeID) int {
	k := envKey{env, b}
	if e, ok := r.envs[k]; ok {
		return e
	}
	e := len(r.envs) + 1
	r.envs[k] = e
	return e
}

func (r *reader) read(id NodeID, binders []NodeID) (*term.Term, error) {
	env := 0
	for _, b := range binders {
		env = r.enter(env, b)
	}
	return r.readIn(id, binders, env)
}

func (r *reader) readIn(id NodeID, binders []NodeID, env int) (*term.Term, error) {
	g := r.g
	id = g.deref(id)
	n := g.nodes[id]
	depth := len(binders)
	switch n.typ {
	case NodeTypeAtom:
		return term.ShiftRank(n.leaf, uint32(depth)), nil
	case NodeTypeErase:
		return term.BOT, nil
	case NodeTypeVar:
		for i := depth - 1; i >= 0; i-- {
			if binders[i] == id {
				return term.IVar(uint32(depth - 1 - i)), nil
			}
		}
		if t, ok := r.free[id]; ok {
			return t, nil
		}
		return n.leaf, nil
	}

	key := readKey{id, env}
	if t, ok := r.done[key]; ok {
		return t, nil
	}
	if r.onPath[id] {
		return nil, errwrap.Wrapf(ErrCyclic, "node %d", id)
	}
	r.onPath[id] = true
	defer delete(r.onPath, id)

	var t *term.Term
	switch n.typ {
	case NodeTypeApp, NodeTypeJoin:
		lhs, err := r.readIn(n.lhs, binders, env)
		if err != nil {
			return nil, err
		}
		rhs, err := r.readIn(n.rhs, binders, env)
		if err != nil {
			return nil, err
		}
		if n.typ == NodeTypeApp {
			t = term.App(lhs, rhs)
		} else {
			t = term.Join(lhs, rhs)
		}
	case NodeTypeAbs:
		inner := append(binders[:depth:depth], n.lhs)
		body, err := r.readIn(n.rhs, inner, r.enter(env, n.lhs))
		if err != nil {
			return nil, err
		}
		t = term.Abs(body)
	default:
		return nil, errwrap.Errorf("node %d: unexpected %s", id, n.typ)
	}
	r.done[key] = t
	return t, nil
}

// Abstract builds a combinator graph equivalent to binding v over body.
// body must be acyclic; v must be a Var node.
func (g *Graph) Abstract(v, body NodeID) (NodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(v)
	if g.nodes[v].typ != NodeTypeVar {
		return None, errwrap.Errorf("abstract over node %d: not a Var", v)
	}
	name := term.NVar(fmt.Sprintf("_g%d", v))
	t, err := g.newReader(map[NodeID]*term.Term{v: name}).read(body, nil)
	if err != nil {
		return None, errwrap.Wrapf(err, "abstract over node %d", v)
	}
	c, err := compiler.Abstract(name, t)
	if err != nil {
		return None, err
	}
	return g.fromTerm(c, scope{}, make(map[*term.Term]NodeID)), nil
}
