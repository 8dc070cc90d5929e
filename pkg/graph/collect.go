package graph

// Collect turns every node not reachable from the roots into an Erase
// tombstone and returns how many were erased. NodeIDs stay valid; a
// tombstone reads back as BOT.
func (g *Graph) Collect(roots ...NodeID) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	live := make(map[NodeID]bool)
	for _, root := range roots {
		g.check(root)
		// Keep the Copy chain of each root so callers holding the old handle
		// still resolve it.
		for id := root; g.nodes[id].typ == NodeTypeCopy && !live[id]; id = g.nodes[id].lhs {
			live[id] = true
		}
		for _, id := range g.reachable(root) {
			live[id] = true
			// Edges skip indirections so that Copy nodes can go.
			switch n := &g.nodes[id]; n.typ {
			case NodeTypeApp, NodeTypeJoin, NodeTypeAbs:
				n.lhs, n.rhs = g.deref(n.lhs), g.deref(n.rhs)
			}
		}
	}

	erased := 0
	for i := range g.nodes {
		id := NodeID(i)
		if live[id] || g.nodes[id].typ == NodeTypeErase {
			continue
		}
		g.nodes[id] = node{typ: NodeTypeErase, lhs: None, rhs: None}
		erased++
	}
	g.erased += uint64(erased)
	if g.opts.Metrics {
		graphCollected.Add(float64(erased))
	}
	if erased > 0 {
		g.log.Debug("collected", "erased", erased, "live", len(live))
	}
	return erased
}
