package neat

import "math/rand"

// Mutate applies mutations to the genome in place. Each operator has its own
// probability check; with single_structural_mutation at most one of add-node
// and add-connection changes the structure.
func (g *Genome) Mutate(config *GenomeConfig, tracker *InnovationTracker, rng *rand.Rand) {
	structural := false

	if rng.Float64() < config.NodeAddProb {
		structural = g.MutateAddNode(config, tracker, rng)
	}
	if !config.SingleStructuralMutation || !structural {
		if rng.Float64() < config.ConnAddProb {
			g.MutateAddConnection(config, tracker, rng)
		}
	}

	if rng.Float64() < config.WeightMutateRate {
		g.MutateWeights(config, rng)
	}
	if rng.Float64() < config.DisableProb {
		g.MutateDisable(rng)
	}
	if rng.Float64() < config.EnableProb {
		g.MutateEnable(config, rng)
	}

	for _, n := range g.Nodes {
		n.mutate(config, rng)
	}
}

// MutateAddNode splits a random enabled connection in->out into in->new (weight 1)
// and new->out (the old weight), disabling the original. It reports false when
// the genome has no enabled connection to split.
func (g *Genome) MutateAddNode(config *GenomeConfig, tracker *InnovationTracker, rng *rand.Rand) bool {
	enabled := g.enabledConnections()
	if len(enabled) == 0 {
		return false
	}
	split := enabled[rng.Intn(len(enabled))]
	split.Enabled = false

	id := tracker.SplitNode(split.Innovation)
	if g.Node(id) != nil {
		// This genome already split the same gene once (it was re-enabled since).
		id = tracker.NewNodeID()
	}
	node := NewNodeGene(id, RoleHidden, config, rng)
	node.Bias = 0
	g.addNode(node)

	g.addConnection(&ConnectionGene{
		In:         split.In,
		Out:        id,
		Weight:     1.0,
		Enabled:    true,
		Innovation: tracker.Connection(split.In, id),
	})
	g.addConnection(&ConnectionGene{
		In:         id,
		Out:        split.Out,
		Weight:     split.Weight,
		Enabled:    true,
		Innovation: tracker.Connection(id, split.Out),
	})
	return true
}

// MutateAddConnection connects a random pair of nodes that has no gene yet.
// Targets are never inputs; in feed-forward mode pairs closing a cycle are
// rejected. It reports false when no candidate pair exists.
func (g *Genome) MutateAddConnection(config *GenomeConfig, tracker *InnovationTracker, rng *rand.Rand) bool {
	existing := make(map[ConnectionKey]bool, len(g.Connections))
	for _, c := range g.Connections {
		existing[c.Key()] = true
	}

	var candidates []ConnectionKey
	for _, src := range g.Nodes {
		for _, dst := range g.Nodes {
			if dst.Role == RoleInput {
				continue
			}
			key := ConnectionKey{In: src.ID, Out: dst.ID}
			if existing[key] {
				continue
			}
			candidates = append(candidates, key)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, key := range candidates {
		if config.FeedForward && createsCycle(g, key.In, key.Out) {
			continue
		}
		g.addConnection(&ConnectionGene{
			In:         key.In,
			Out:        key.Out,
			Weight:     randomWeight(config, rng),
			Enabled:    true,
			Innovation: tracker.Connection(key.In, key.Out),
		})
		return true
	}
	return false
}

// MutateWeights perturbs or resets the weight of every connection.
func (g *Genome) MutateWeights(config *GenomeConfig, rng *rand.Rand) {
	for _, c := range g.Connections {
		c.mutateWeight(config, rng)
	}
}

// MutateDisable disables one random enabled connection. The network may be
// left without any input->output path; evaluation stays well defined.
func (g *Genome) MutateDisable(rng *rand.Rand) bool {
	enabled := g.enabledConnections()
	if len(enabled) == 0 {
		return false
	}
	enabled[rng.Intn(len(enabled))].Enabled = false
	return true
}

// MutateEnable re-enables one random disabled connection, unless in
// feed-forward mode doing so would close a cycle.
func (g *Genome) MutateEnable(config *GenomeConfig, rng *rand.Rand) bool {
	var disabled []*ConnectionGene
	for _, c := range g.Connections {
		if !c.Enabled {
			disabled = append(disabled, c)
		}
	}
	if len(disabled) == 0 {
		return false
	}
	c := disabled[rng.Intn(len(disabled))]
	if config.FeedForward && createsCycle(g, c.In, c.Out) {
		return false
	}
	c.Enabled = true
	return true
}

func (g *Genome) enabledConnections() []*ConnectionGene {
	var enabled []*ConnectionGene
	for _, c := range g.Connections {
		if c.Enabled {
			enabled = append(enabled, c)
		}
	}
	return enabled
}
