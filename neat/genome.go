package neat

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

// Genome represents an individual in the population.
//
// Nodes are kept sorted by ID and Connections by innovation number, so two
// genomes can be aligned with a single merge walk.
type Genome struct {
	ID              int
	Nodes           []*NodeGene
	Connections     []*ConnectionGene
	Fitness         float64
	AdjustedFitness float64
	SpeciesID       int
	Evaluated       bool // set once a terminal fitness has been recorded
}

// NewMinimalGenome creates a genome with only input and output nodes.
// With initial_connection = "full" every input is wired to every output.
func NewMinimalGenome(id int, config *GenomeConfig, tracker *InnovationTracker, rng *rand.Rand) (*Genome, error) {
	if config.NumInputs <= 0 || config.NumOutputs <= 0 {
		return nil, configError("genome needs at least one input and one output, got %d/%d", config.NumInputs, config.NumOutputs)
	}

	g := &Genome{ID: id}
	for _, key := range config.InputKeys() {
		g.addNode(NewNodeGene(key, RoleInput, config, rng))
	}
	for _, key := range config.OutputKeys() {
		g.addNode(NewNodeGene(key, RoleOutput, config, rng))
	}

	if config.InitialConnection == "full" {
		for _, in := range config.InputKeys() {
			for _, out := range config.OutputKeys() {
				g.addConnection(&ConnectionGene{
					In:         in,
					Out:        out,
					Weight:     randomWeight(config, rng),
					Enabled:    true,
					Innovation: tracker.Connection(in, out),
				})
			}
		}
	}
	return g, nil
}

// Copy creates a deep copy of the genome, ID and fitness bookkeeping included.
func (g *Genome) Copy() *Genome {
	c := &Genome{
		ID:              g.ID,
		Nodes:           make([]*NodeGene, len(g.Nodes)),
		Connections:     make([]*ConnectionGene, len(g.Connections)),
		Fitness:         g.Fitness,
		AdjustedFitness: g.AdjustedFitness,
		SpeciesID:       g.SpeciesID,
		Evaluated:       g.Evaluated,
	}
	for i, n := range g.Nodes {
		c.Nodes[i] = n.Copy()
	}
	for i, cg := range g.Connections {
		c.Connections[i] = cg.Copy()
	}
	return c
}

// CopyAs copies the genes under a new ID with fresh fitness bookkeeping.
func (g *Genome) CopyAs(id int) *Genome {
	c := g.Copy()
	c.ID = id
	c.resetFitness()
	return c
}

// SetFitness records the terminal fitness of the genome's episode.
func (g *Genome) SetFitness(f float64) {
	g.Fitness = f
	g.Evaluated = true
}

func (g *Genome) resetFitness() {
	g.Fitness = 0
	g.AdjustedFitness = 0
	g.SpeciesID = 0
	g.Evaluated = false
}

// Node returns the node gene with the given ID, or nil.
func (g *Genome) Node(id int) *NodeGene {
	i := sort.Search(len(g.Nodes), func(i int) bool { return g.Nodes[i].ID >= id })
	if i < len(g.Nodes) && g.Nodes[i].ID == id {
		return g.Nodes[i]
	}
	return nil
}

// Connection returns the connection gene joining in to out, or nil.
func (g *Genome) Connection(in, out int) *ConnectionGene {
	for _, c := range g.Connections {
		if c.In == in && c.Out == out {
			return c
		}
	}
	return nil
}

// InputIDs returns the IDs of the input nodes in sensor order (-1, -2, ...).
func (g *Genome) InputIDs() []int {
	var ids []int
	for _, n := range g.Nodes {
		if n.Role == RoleInput {
			ids = append(ids, n.ID)
		}
	}
	// Nodes are sorted ascending, so inputs come out as -n..-1.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	return ids
}

// OutputIDs returns the IDs of the output nodes in actuator order.
func (g *Genome) OutputIDs() []int {
	var ids []int
	for _, n := range g.Nodes {
		if n.Role == RoleOutput {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// EnabledConnections counts the enabled connection genes.
func (g *Genome) EnabledConnections() int {
	n := 0
	for _, c := range g.Connections {
		if c.Enabled {
			n++
		}
	}
	return n
}

func (g *Genome) addNode(n *NodeGene) {
	i := sort.Search(len(g.Nodes), func(i int) bool { return g.Nodes[i].ID >= n.ID })
	g.Nodes = append(g.Nodes, nil)
	copy(g.Nodes[i+1:], g.Nodes[i:])
	g.Nodes[i] = n
}

func (g *Genome) addConnection(c *ConnectionGene) {
	i := sort.Search(len(g.Connections), func(i int) bool { return g.Connections[i].Innovation >= c.Innovation })
	g.Connections = append(g.Connections, nil)
	copy(g.Connections[i+1:], g.Connections[i:])
	g.Connections[i] = c
}

// Validate checks that the genome has the configured inputs and outputs, that
// every connection references nodes of this genome, and that no (in, out)
// pair or innovation number appears twice.
func (g *Genome) Validate(config *GenomeConfig) error {
	var inputs, outputs int
	for i, n := range g.Nodes {
		if i > 0 && g.Nodes[i-1].ID >= n.ID {
			return fmt.Errorf("genome %d: nodes not strictly sorted at %d", g.ID, n.ID)
		}
		switch n.Role {
		case RoleInput:
			inputs++
		case RoleOutput:
			outputs++
		}
	}
	if inputs != config.NumInputs || outputs != config.NumOutputs {
		return fmt.Errorf("genome %d: has %d inputs and %d outputs, want %d and %d",
			g.ID, inputs, outputs, config.NumInputs, config.NumOutputs)
	}

	pairs := make(map[ConnectionKey]bool, len(g.Connections))
	for i, c := range g.Connections {
		if i > 0 && g.Connections[i-1].Innovation >= c.Innovation {
			return fmt.Errorf("genome %d: innovation %d out of order", g.ID, c.Innovation)
		}
		if pairs[c.Key()] {
			return fmt.Errorf("genome %d: duplicate connection %d->%d", g.ID, c.In, c.Out)
		}
		pairs[c.Key()] = true
		if g.Node(c.In) == nil || g.Node(c.Out) == nil {
			return fmt.Errorf("genome %d: connection %d->%d references a missing node", g.ID, c.In, c.Out)
		}
		if g.Node(c.Out).Role == RoleInput {
			return fmt.Errorf("genome %d: connection %d->%d targets an input", g.ID, c.In, c.Out)
		}
	}
	return nil
}

// String returns a multi-line description of the genome.
func (g *Genome) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Genome %d (fitness %.4f, species %d)\n", g.ID, g.Fitness, g.SpeciesID)
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "  %s\n", n)
	}
	for _, c := range g.Connections {
		fmt.Fprintf(&b, "  %s\n", c)
	}
	return b.String()
}
