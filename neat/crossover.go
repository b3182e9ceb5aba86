package neat

import "math/rand"

// Crossover creates a child genome by aligning the parents' connection genes
// by innovation number.
//
// The fitter parent is primary; on equal fitness a is primary. Matching genes
// are taken from either parent with probability 0.5 each, drawn from rng, so
// the result is reproducible for a given seed. Disjoint and excess genes are
// inherited from the primary parent only. The child's nodes are both parents'
// input and output nodes plus every node referenced by an inherited connection,
// preferring the primary parent's node genes.
//
// In feed-forward mode the child's enabled genes are re-admitted in
// innovation order and any gene that would close a cycle stays disabled.
func Crossover(childID int, a, b *Genome, config *GenomeConfig, rng *rand.Rand) *Genome {
	primary, secondary := a, b
	if b.Fitness > a.Fitness {
		primary, secondary = b, a
	}

	child := &Genome{ID: childID}
	j := 0
	for _, pc := range primary.Connections {
		for j < len(secondary.Connections) && secondary.Connections[j].Innovation < pc.Innovation {
			j++
		}
		gene := pc
		if j < len(secondary.Connections) && secondary.Connections[j].Innovation == pc.Innovation {
			if rng.Float64() < 0.5 {
				gene = secondary.Connections[j]
			}
			j++
		}
		child.Connections = append(child.Connections, gene.Copy())
	}

	need := make(map[int]bool)
	for _, parent := range []*Genome{primary, secondary} {
		for _, n := range parent.Nodes {
			if n.Role != RoleHidden {
				need[n.ID] = true
			}
		}
	}
	for _, c := range child.Connections {
		need[c.In] = true
		need[c.Out] = true
	}
	for id := range need {
		n := primary.Node(id)
		if n == nil {
			n = secondary.Node(id)
		}
		if n != nil {
			child.addNode(n.Copy())
		}
	}
	if config != nil && config.FeedForward {
		breakCycles(child)
	}
	return child
}

func breakCycles(g *Genome) {
	var enabled []*ConnectionGene
	for _, c := range g.Connections {
		if c.Enabled {
			enabled = append(enabled, c)
			c.Enabled = false
		}
	}
	for _, c := range enabled {
		c.Enabled = !createsCycle(g, c.In, c.Out)
	}
}
