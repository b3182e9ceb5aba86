package neat

import (
	"fmt"
	"math/rand"
)

// NodeRole is the position of a node in the network.
type NodeRole int

const (
	RoleInput NodeRole = iota
	RoleHidden
	RoleOutput
)

func (r NodeRole) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleHidden:
		return "hidden"
	case RoleOutput:
		return "output"
	}
	return fmt.Sprintf("NodeRole(%d)", int(r))
}

// ParseNodeRole is the inverse of NodeRole.String.
func ParseNodeRole(s string) (NodeRole, error) {
	switch s {
	case "input":
		return RoleInput, nil
	case "hidden":
		return RoleHidden, nil
	case "output":
		return RoleOutput, nil
	}
	return 0, fmt.Errorf("unknown node role %q", s)
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the genome.
// IDs are negative for inputs, 0..m-1 for outputs and >= m for hidden nodes.
type NodeGene struct {
	ID          int
	Role        NodeRole
	Activation  string
	Aggregation string
	Bias        float64
}

// NewNodeGene creates a node with attributes initialized from the config.
// Input nodes carry no bias and pass their value through unchanged.
func NewNodeGene(id int, role NodeRole, config *GenomeConfig, rng *rand.Rand) *NodeGene {
	if role == RoleInput {
		return &NodeGene{ID: id, Role: role, Activation: "identity", Aggregation: "sum"}
	}
	return &NodeGene{
		ID:          id,
		Role:        role,
		Activation:  initActivation(config, rng),
		Aggregation: config.AggregationDefault,
		Bias:        clamp(rng.NormFloat64()*config.BiasInitStdev, config.BiasMinValue, config.BiasMaxValue),
	}
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Role: %s, Bias: %.3f, Activation: %s)", ng.ID, ng.Role, ng.Bias, ng.Activation)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// mutate perturbs the bias and occasionally swaps the activation. Inputs are left alone.
func (ng *NodeGene) mutate(config *GenomeConfig, rng *rand.Rand) {
	if ng.Role == RoleInput {
		return
	}
	if rng.Float64() < config.BiasMutateRate {
		delta := (rng.Float64()*2 - 1) * config.BiasMutatePower
		ng.Bias = clamp(ng.Bias+delta, config.BiasMinValue, config.BiasMaxValue)
	}
	if len(config.ActivationOptions) > 1 && rng.Float64() < config.ActivationMutateRate {
		ng.Activation = config.ActivationOptions[rng.Intn(len(config.ActivationOptions))]
	}
}

func initActivation(config *GenomeConfig, rng *rand.Rand) string {
	if config.ActivationDefault == "random" || config.ActivationDefault == "" {
		return config.ActivationOptions[rng.Intn(len(config.ActivationOptions))]
	}
	return config.ActivationDefault
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionKey identifies the structural pair a connection gene joins.
type ConnectionKey struct {
	In  int
	Out int
}

// ConnectionGene represents a directed, weighted connection between two nodes.
// Two genes with the same Innovation are the same gene, whichever genome carries them.
type ConnectionGene struct {
	In         int
	Out        int
	Weight     float64
	Enabled    bool
	Innovation int
}

// Key returns the (in, out) pair of the connection.
func (cg *ConnectionGene) Key() ConnectionKey {
	return ConnectionKey{In: cg.In, Out: cg.Out}
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnGene(#%d %d->%d, Weight: %.3f, Enabled: %t)",
		cg.Innovation, cg.In, cg.Out, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// randomWeight draws a fresh weight uniformly from ±weight_init_range.
func randomWeight(config *GenomeConfig, rng *rand.Rand) float64 {
	w := (rng.Float64()*2 - 1) * config.WeightInitRange
	return clamp(w, config.WeightMinValue, config.WeightMaxValue)
}

// mutateWeight resets the weight with weight_replace_rate, otherwise adds a
// uniform delta in ±weight_mutate_power. The result is always clamped.
func (cg *ConnectionGene) mutateWeight(config *GenomeConfig, rng *rand.Rand) {
	if rng.Float64() < config.WeightReplaceRate {
		cg.Weight = randomWeight(config, rng)
		return
	}
	delta := (rng.Float64()*2 - 1) * config.WeightMutatePower
	cg.Weight = clamp(cg.Weight+delta, config.WeightMinValue, config.WeightMaxValue)
}
