package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/graph/topo"
)

func TestAddConnectionOnEmptyGenomeScenario(t *testing.T) {
	cfg := testConfig()
	cfg.Neat.PopSize = 5
	cfg.Genome.NumInputs = 2
	pop, err := NewPopulation(cfg, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	require.Len(t, pop.Genomes, 5)

	g := pop.Genomes[0]
	require.Empty(t, g.Connections)
	before := pop.Tracker.Innovations()

	added := g.MutateAddConnection(&cfg.Genome, pop.Tracker, rand.New(rand.NewSource(7)))
	require.True(t, added)
	require.Len(t, g.Connections, 1)
	c := g.Connections[0]
	assert.True(t, c.Enabled)
	assert.Equal(t, before+1, c.Innovation)
	assert.NotEqual(t, RoleInput, g.Node(c.Out).Role)
	require.NoError(t, g.Validate(&cfg.Genome))
}

func TestAddNodeSplitsConnection(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.InitialConnection = "full"
	tracker := NewInnovationTracker(cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(11))
	g := newTestGenome(t, &cfg.Genome, tracker, rng)

	nodes, conns := len(g.Nodes), len(g.Connections)
	require.True(t, g.MutateAddNode(&cfg.Genome, tracker, rng))

	assert.Len(t, g.Nodes, nodes+1)
	assert.Len(t, g.Connections, conns+2)

	var disabled []*ConnectionGene
	for _, c := range g.Connections {
		if !c.Enabled {
			disabled = append(disabled, c)
		}
	}
	require.Len(t, disabled, 1)
	split := disabled[0]

	var hidden *NodeGene
	for _, n := range g.Nodes {
		if n.Role == RoleHidden {
			hidden = n
		}
	}
	require.NotNil(t, hidden)
	in := g.Connection(split.In, hidden.ID)
	out := g.Connection(hidden.ID, split.Out)
	require.NotNil(t, in)
	require.NotNil(t, out)
	assert.Equal(t, 1.0, in.Weight)
	assert.Equal(t, split.Weight, out.Weight)
	assert.True(t, in.Enabled)
	assert.True(t, out.Enabled)
	require.NoError(t, g.Validate(&cfg.Genome))
}

func TestAddNodeWithoutEnabledConnection(t *testing.T) {
	cfg := testConfig()
	tracker := NewInnovationTracker(cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(1))
	g := newTestGenome(t, &cfg.Genome, tracker, rng)

	assert.False(t, g.MutateAddNode(&cfg.Genome, tracker, rng))
	assert.Len(t, g.Nodes, 7)
}

func TestSameSplitSharesNodeID(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.NumInputs = 1
	cfg.Genome.NumOutputs = 1
	cfg.Genome.InitialConnection = "full"
	tracker := NewInnovationTracker(1)
	rng := rand.New(rand.NewSource(1))

	a := newTestGenome(t, &cfg.Genome, tracker, rng)
	b := newTestGenome(t, &cfg.Genome, tracker, rng)
	require.True(t, a.MutateAddNode(&cfg.Genome, tracker, rng))
	require.True(t, b.MutateAddNode(&cfg.Genome, tracker, rng))

	require.Len(t, a.Nodes, 3)
	assert.Equal(t, a.Nodes[2].ID, b.Nodes[2].ID)
	for i := range a.Connections {
		assert.Equal(t, a.Connections[i].Innovation, b.Connections[i].Innovation)
	}

	// Re-enabling and splitting the same gene again must not reuse the node.
	a.Connections[0].Enabled = true
	a.Connections[1].Enabled = false
	a.Connections[2].Enabled = false
	require.True(t, a.MutateAddNode(&cfg.Genome, tracker, rng))
	require.Len(t, a.Nodes, 4)
	require.NoError(t, a.Validate(&cfg.Genome))
}

func TestAddConnectionExhaustsCandidates(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.NumInputs = 2
	cfg.Genome.NumOutputs = 1
	tracker := NewInnovationTracker(1)
	rng := rand.New(rand.NewSource(5))
	g := newTestGenome(t, &cfg.Genome, tracker, rng)

	// Sources: -2, -1, 0. Target: 0 only.
	for i := 0; i < 3; i++ {
		require.True(t, g.MutateAddConnection(&cfg.Genome, tracker, rng))
	}
	assert.False(t, g.MutateAddConnection(&cfg.Genome, tracker, rng))
	assert.Len(t, g.Connections, 3)
	require.NoError(t, g.Validate(&cfg.Genome))
}

func TestAddConnectionFeedForwardNeverClosesCycle(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.FeedForward = true
	cfg.Genome.InitialConnection = "full"
	tracker := NewInnovationTracker(cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(9))
	g := newTestGenome(t, &cfg.Genome, tracker, rng)

	for i := 0; i < 60; i++ {
		if i%3 == 0 {
			g.MutateAddNode(&cfg.Genome, tracker, rng)
		}
		g.MutateAddConnection(&cfg.Genome, tracker, rng)
		g.MutateEnable(&cfg.Genome, rng)
	}
	dg, selfLoops := EnabledGraph(g)
	assert.Empty(t, selfLoops)
	_, err := topo.Sort(dg)
	assert.NoError(t, err)
}

func TestMutationSequencePreservesInvariants(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.NodeAddProb = 0.3
	cfg.Genome.ConnAddProb = 0.6
	cfg.Genome.DisableProb = 0.2
	cfg.Genome.EnableProb = 0.2
	tracker := NewInnovationTracker(cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(2024))
	g := newTestGenome(t, &cfg.Genome, tracker, rng)

	for i := 0; i < 300; i++ {
		g.Mutate(&cfg.Genome, tracker, rng)
		require.NoError(t, g.Validate(&cfg.Genome))
		require.GreaterOrEqual(t, len(g.Nodes), cfg.Genome.NumInputs+cfg.Genome.NumOutputs)
		for _, c := range g.Connections {
			require.NotEqual(t, RoleInput, g.Node(c.Out).Role)
			require.LessOrEqual(t, c.Weight, cfg.Genome.WeightMaxValue)
			require.GreaterOrEqual(t, c.Weight, cfg.Genome.WeightMinValue)
		}
	}
}

func TestMutateWeightsStaysInBounds(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.InitialConnection = "full"
	cfg.Genome.WeightMutatePower = 10
	cfg.Genome.WeightMaxValue = 2
	cfg.Genome.WeightMinValue = -2
	tracker := NewInnovationTracker(cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(4))
	g := newTestGenome(t, &cfg.Genome, tracker, rng)

	before := make([]float64, len(g.Connections))
	for i, c := range g.Connections {
		before[i] = c.Weight
	}
	g.MutateWeights(&cfg.Genome, rng)

	changed := 0
	for i, c := range g.Connections {
		assert.LessOrEqual(t, c.Weight, 2.0)
		assert.GreaterOrEqual(t, c.Weight, -2.0)
		if c.Weight != before[i] {
			changed++
		}
	}
	assert.Positive(t, changed)
}

func TestMutateDisable(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.NumInputs = 1
	cfg.Genome.NumOutputs = 1
	cfg.Genome.InitialConnection = "full"
	tracker := NewInnovationTracker(1)
	rng := rand.New(rand.NewSource(1))
	g := newTestGenome(t, &cfg.Genome, tracker, rng)

	require.True(t, g.MutateDisable(rng))
	assert.Zero(t, g.EnabledConnections())
	assert.False(t, g.MutateDisable(rng))
	require.True(t, g.MutateEnable(&cfg.Genome, rng))
	assert.Equal(t, 1, g.EnabledConnections())
}
