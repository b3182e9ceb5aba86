package neat

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// EnabledGraph builds a directed graph of the genome's enabled connections.
// Graph node i stands for g.Nodes[i]. Self-loops are left out of the graph
// and reported separately, keyed by node index.
func EnabledGraph(g *Genome) (*simple.DirectedGraph, map[int64]bool) {
	dg := simple.NewDirectedGraph()
	for i := range g.Nodes {
		dg.AddNode(simple.Node(int64(i)))
	}
	selfLoops := make(map[int64]bool)
	for _, c := range g.Connections {
		if !c.Enabled {
			continue
		}
		from, to := g.nodeIndex(c.In), g.nodeIndex(c.Out)
		if from < 0 || to < 0 {
			continue
		}
		if from == to {
			selfLoops[from] = true
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(from), simple.Node(to)))
	}
	return dg, selfLoops
}

func (g *Genome) nodeIndex(id int) int64 {
	i := sort.Search(len(g.Nodes), func(i int) bool { return g.Nodes[i].ID >= id })
	if i < len(g.Nodes) && g.Nodes[i].ID == id {
		return int64(i)
	}
	return -1
}

// createsCycle reports whether enabling in->out would close a cycle over the
// enabled connections.
func createsCycle(g *Genome, in, out int) bool {
	if in == out {
		return true
	}
	dg, _ := EnabledGraph(g)
	from, target := g.nodeIndex(out), g.nodeIndex(in)
	if from < 0 || target < 0 {
		return false
	}
	var bf traverse.BreadthFirst
	found := bf.Walk(dg, dg.Node(from), func(n graph.Node, _ int) bool {
		return n.ID() == target
	})
	return found != nil
}
