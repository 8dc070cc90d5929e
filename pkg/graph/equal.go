package graph

// Copy duplicates the subgraph reachable from root into a new graph,
// preserving sharing and cycles, and returns the new graph with the image of
// root. Copy indirections are not carried over.
func (g *Graph) Copy(root NodeID) (*Graph, NodeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.check(root)

	out := New(g.opts)
	remap := make(map[NodeID]NodeID)
	// Breadth first, allocating each node before its edges are known.
	queue := []NodeID{g.deref(root)}
	remap[queue[0]] = out.add(g.nodes[queue[0]])
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := g.nodes[id]
		switch n.typ {
		case NodeTypeApp, NodeTypeJoin, NodeTypeAbs:
		default:
			continue
		}
		edges := [2]NodeID{g.deref(n.lhs), g.deref(n.rhs)}
		for i, e := range edges {
			m, ok := remap[e]
			if !ok {
				m = out.add(g.nodes[e])
				remap[e] = m
				queue = append(queue, e)
			}
			edges[i] = m
		}
		fresh := &out.nodes[remap[id]]
		fresh.lhs, fresh.rhs = edges[0], edges[1]
	}
	return out, remap[g.deref(root)]
}

type pair struct{ a, b NodeID }

type bisim struct {
	g1, g2  *Graph
	assumed map[pair]bool
	vars    map[NodeID]NodeID
	rev     map[NodeID]NodeID
}

// Equal decides whether node a of g1 and node b of g2 unfold to the same
// possibly infinite tree, up to renaming of bound variables. It terminates on
// cycles by assuming every pair it is already comparing. Joins are compared
// structurally.
func Equal(g1 *Graph, a NodeID, g2 *Graph, b NodeID) bool {
	g1.mu.Lock()
	defer g1.mu.Unlock()
	if g2 != g1 {
		g2.mu.Lock()
		defer g2.mu.Unlock()
	}
	s := &bisim{
		g1:      g1,
		g2:      g2,
		assumed: make(map[pair]bool),
		vars:    make(map[NodeID]NodeID),
		rev:     make(map[NodeID]NodeID),
	}
	return s.equal(a, b)
}

func (s *bisim) equal(a, b NodeID) bool {
	a, b = s.g1.deref(a), s.g2.deref(b)
	p := pair{a, b}
	if s.assumed[p] {
		return true
	}
	n1, n2 := s.g1.nodes[a], s.g2.nodes[b]
	if n1.typ != n2.typ {
		return false
	}
	switch n1.typ {
	case NodeTypeAtom:
		return n1.leaf == n2.leaf
	case NodeTypeErase:
		return true
	case NodeTypeVar:
		if m, ok := s.vars[a]; ok {
			return m == b
		}
		if _, ok := s.rev[b]; ok {
			return false
		}
		// Free variables match by name.
		return n1.leaf == n2.leaf
	}
	s.assumed[p] = true
	if n1.typ == NodeTypeAbs {
		v1, v2 := s.g1.deref(n1.lhs), s.g2.deref(n2.lhs)
		if m, ok := s.vars[v1]; ok && m != v2 {
			return false
		}
		s.vars[v1], s.rev[v2] = v2, v1
		return s.equal(n1.rhs, n2.rhs)
	}
	return s.equal(n1.lhs, n2.lhs) && s.equal(n1.rhs, n2.rhs)
}
