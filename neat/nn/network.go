// Package nn compiles genomes into executable networks.
package nn

import (
	"fmt"
	"slices"

	"github.com/baldhumanity/neatdrive/neat"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// neuralNode is a node prepared for activation.
type neuralNode struct {
	ID          int
	Bias        float64
	Activation  neat.ActivationFunc
	Aggregation neat.AggregationFunc
	Incoming    []link
}

type link struct {
	from   int // index into the value buffer
	weight float64
}

// Network is the executable form of a genome.
//
// Enabled connections form a directed graph whose strongly connected
// components are evaluated in topological order, nodes inside a component in
// ID order. Values are relaxed in place: an acyclic network needs one pass and
// is exact; a recurrent one gets a fixed number of passes. Every Activate call
// starts from zeroed node values, so a Network holds no state between calls
// and is safe for concurrent use.
type Network struct {
	inputs    []int // buffer indices of input nodes, sensor order
	outputs   []int // buffer indices of output nodes
	order     []int // buffer indices of evaluated nodes
	nodes     []neuralNode
	passes    int
	recurrent bool
	hasPath   bool
	liveNodes int
	liveConns int
}

// New compiles the genome. passes is used only when the enabled connections
// contain a cycle.
func New(g *neat.Genome, passes int) (*Network, error) {
	if passes <= 0 {
		return nil, fmt.Errorf("passes must be positive, got %d", passes)
	}
	net := &Network{nodes: make([]neuralNode, len(g.Nodes))}

	for i, gn := range g.Nodes {
		act, err := neat.GetActivation(gn.Activation)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", gn.ID, err)
		}
		agg, err := neat.GetAggregation(gn.Aggregation)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", gn.ID, err)
		}
		net.nodes[i] = neuralNode{ID: gn.ID, Bias: gn.Bias, Activation: act, Aggregation: agg}
	}
	index := make(map[int]int, len(g.Nodes))
	for i, gn := range g.Nodes {
		index[gn.ID] = i
	}
	for _, id := range g.InputIDs() {
		net.inputs = append(net.inputs, index[id])
	}
	for _, id := range g.OutputIDs() {
		net.outputs = append(net.outputs, index[id])
	}

	dg, selfLoops := neat.EnabledGraph(g)

	// Only nodes reachable from an input carry signal.
	var bf traverse.BreadthFirst
	for _, in := range net.inputs {
		bf.Walk(dg, dg.Node(int64(in)), nil)
	}
	reachable := func(i int) bool { return bf.Visited(dg.Node(int64(i))) }

	live := make(map[int]bool)
	for _, c := range g.Connections {
		if !c.Enabled {
			continue
		}
		from, okFrom := index[c.In]
		to, okTo := index[c.Out]
		if !okFrom || !okTo {
			return nil, fmt.Errorf("connection %d->%d references a missing node", c.In, c.Out)
		}
		net.liveConns++
		live[from], live[to] = true, true
		if reachable(from) {
			net.nodes[to].Incoming = append(net.nodes[to].Incoming, link{from: from, weight: c.Weight})
		}
	}
	for _, gn := range g.Nodes {
		if gn.Role != neat.RoleHidden || live[index[gn.ID]] {
			net.liveNodes++
		}
	}

	sccs := topo.TarjanSCC(dg)
	for i := len(sccs) - 1; i >= 0; i-- {
		component := sccs[i]
		if len(component) > 1 || selfLoops[component[0].ID()] {
			net.recurrent = true
		}
		ids := make([]int, 0, len(component))
		for _, n := range component {
			ids = append(ids, int(n.ID()))
		}
		slices.SortFunc(ids, func(a, b int) int { return net.nodes[a].ID - net.nodes[b].ID })
		for _, idx := range ids {
			if g.Nodes[idx].Role == neat.RoleInput || !reachable(idx) {
				continue
			}
			net.order = append(net.order, idx)
		}
	}
	for _, out := range net.outputs {
		if reachable(out) {
			net.hasPath = true
		}
	}

	net.passes = 1
	if net.recurrent {
		net.passes = passes
	}
	return net, nil
}

// Activate computes the outputs for one input vector. Nodes without a path
// from any input output exactly 0.
func (net *Network) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.inputs) {
		return nil, fmt.Errorf("mismatch between input count (%d) and network input nodes (%d)", len(inputs), len(net.inputs))
	}
	values := make([]float64, len(net.nodes))
	for i, idx := range net.inputs {
		values[idx] = inputs[i]
	}

	var buf []float64
	for pass := 0; pass < net.passes; pass++ {
		for _, idx := range net.order {
			node := &net.nodes[idx]
			buf = buf[:0]
			for _, l := range node.Incoming {
				buf = append(buf, values[l.from]*l.weight)
			}
			values[idx] = node.Activation(node.Aggregation(buf) + node.Bias)
		}
	}

	outputs := make([]float64, len(net.outputs))
	for i, idx := range net.outputs {
		outputs[i] = values[idx]
	}
	return outputs, nil
}

// NodeCount returns the number of live nodes: inputs, outputs and hidden
// nodes touched by an enabled connection.
func (net *Network) NodeCount() int { return net.liveNodes }

// ConnectionCount returns the number of enabled connections.
func (net *Network) ConnectionCount() int { return net.liveConns }

// Recurrent reports whether the enabled connections contain a cycle.
func (net *Network) Recurrent() bool { return net.recurrent }

// HasPath reports whether any output is reachable from an input.
func (net *Network) HasPath() bool { return net.hasPath }
