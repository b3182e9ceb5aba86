package neat

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluateByID(genomes []*Genome) error {
	for _, g := range genomes {
		g.SetFitness(float64(g.ID % 7))
	}
	return nil
}

func newTestPopulation(t *testing.T, cfg *Config, seed int64) *Population {
	t.Helper()
	pop, err := NewPopulation(cfg, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return pop
}

func TestNewPopulation(t *testing.T) {
	cfg := testConfig()
	pop := newTestPopulation(t, cfg, 1)

	assert.Len(t, pop.Genomes, cfg.Neat.PopSize)
	assert.Zero(t, pop.Generation)
	seen := map[int]bool{}
	for _, g := range pop.Genomes {
		assert.False(t, seen[g.ID])
		seen[g.ID] = true
		assert.False(t, g.Evaluated)
	}
	assert.Len(t, pop.Unevaluated(), cfg.Neat.PopSize)
}

func TestNewPopulationRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Neat.PopSize = 0
	_, err := NewPopulation(cfg, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	cfg = testConfig()
	cfg.Reproduction.Elitism = cfg.Neat.PopSize
	_, err = NewPopulation(cfg, nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestEvolveRefusesUnevaluatedGenomes(t *testing.T) {
	pop := newTestPopulation(t, testConfig(), 1)
	for _, g := range pop.Genomes[1:] {
		g.SetFitness(1)
	}

	next, _, err := pop.Evolve()
	assert.Nil(t, next)
	assert.True(t, errors.Is(err, ErrUnevaluated))
}

func TestEvolveKeepsPopulationSize(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.NodeAddProb = 0.2
	pop := newTestPopulation(t, cfg, 3)

	for gen := 0; gen < 8; gen++ {
		next, stats, err := pop.RunGeneration(evaluateByID)
		require.NoError(t, err)
		assert.Equal(t, gen, stats.Generation)
		assert.Equal(t, gen+1, next.Generation)
		assert.Len(t, next.Genomes, cfg.Neat.PopSize)
		assert.Positive(t, stats.SpeciesCount)
		for _, g := range next.Genomes {
			require.NoError(t, g.Validate(&cfg.Genome))
		}
		pop = next
	}
	require.NotNil(t, pop.Best)
	assert.Equal(t, 6.0, pop.Best.Fitness)
}

func TestEvolveWithZeroFitnessStillFillsGeneration(t *testing.T) {
	cfg := testConfig()
	pop := newTestPopulation(t, cfg, 5)

	next, stats, err := pop.RunGeneration(func(genomes []*Genome) error {
		for _, g := range genomes {
			g.SetFitness(0)
		}
		return nil
	})
	require.NoError(t, err)
	assert.True(t, stats.Underflow)
	assert.Len(t, next.Genomes, cfg.Neat.PopSize)
}

func TestEvolveCarriesElitesUnchanged(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.InitialConnection = "full"
	cfg.Reproduction.Elitism = 2
	pop := newTestPopulation(t, cfg, 8)
	require.NoError(t, evaluateByID(pop.Genomes))

	ranked := byFitness(pop.Genomes)
	next, stats, err := pop.Evolve()
	require.NoError(t, err)
	assert.Equal(t, ranked[0].ID, stats.BestGenomeID)

	for i := 0; i < 2; i++ {
		elite := next.Genomes[i]
		assert.Equal(t, ranked[i].ID, elite.ID)
		assert.Equal(t, ranked[i].Connections, elite.Connections)
		assert.Equal(t, ranked[i].Nodes, elite.Nodes)
		assert.False(t, elite.Evaluated)
	}
	for _, g := range next.Genomes[2:] {
		assert.GreaterOrEqual(t, g.ID, cfg.Neat.PopSize+1, "offspring get fresh IDs")
	}
}

func TestEvolveLeavesReceiverUntouched(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.InitialConnection = "full"
	pop := newTestPopulation(t, cfg, 9)
	require.NoError(t, evaluateByID(pop.Genomes))
	before := make([]*Genome, len(pop.Genomes))
	for i, g := range pop.Genomes {
		before[i] = g.Copy()
	}

	_, _, err := pop.Evolve()
	require.NoError(t, err)
	assert.Zero(t, pop.Generation)
	assert.Equal(t, before, pop.Genomes)
	assert.Empty(t, pop.SpeciesSet.Species)
}

func TestRunGenerationPropagatesFitnessError(t *testing.T) {
	pop := newTestPopulation(t, testConfig(), 1)
	boom := errors.New("boom")
	_, _, err := pop.RunGeneration(func([]*Genome) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestSolved(t *testing.T) {
	cfg := testConfig()
	cfg.Neat.NoFitnessTermination = false
	cfg.Neat.FitnessThreshold = 5
	pop := newTestPopulation(t, cfg, 1)
	assert.False(t, pop.Solved())

	next, _, err := pop.RunGeneration(evaluateByID)
	require.NoError(t, err)
	assert.True(t, next.Solved())
}

func TestEvolveIsReproducible(t *testing.T) {
	run := func() []*Genome {
		cfg := testConfig()
		cfg.Genome.NodeAddProb = 0.3
		pop := newTestPopulation(t, cfg, 21)
		for i := 0; i < 4; i++ {
			next, _, err := pop.RunGeneration(evaluateByID)
			require.NoError(t, err)
			pop = next
		}
		return pop.Genomes
	}
	assert.Equal(t, run(), run())
}

func TestStagnationCullsStaleSpecies(t *testing.T) {
	cfg := DefaultConfig().Stagnation
	cfg.MaxStagnation = 2
	cfg.SpeciesElitism = 1
	stag, err := NewStagnation(&cfg)
	require.NoError(t, err)

	strong := NewSpecies(1, 0, &Genome{ID: 1})
	strong.Members = []*Genome{{ID: 1, Fitness: 10}}
	weak := NewSpecies(2, 0, &Genome{ID: 2})
	weak.Members = []*Genome{{ID: 2, Fitness: 1}}
	species := []*Species{strong, weak}

	for gen := 0; gen < 2; gen++ {
		assert.Len(t, stag.Update(species, gen, nil), 2)
	}
	breeding := stag.Update(species, 2, nil)
	require.Len(t, breeding, 1)
	assert.Equal(t, 1, breeding[0].ID)
	assert.Equal(t, 2, weak.Staleness)
	assert.Equal(t, 2, strong.Staleness)
}

func TestRouletteSelectUnderflowIsUniform(t *testing.T) {
	pool := []*Genome{{ID: 1}, {ID: 2}, {ID: 3}}
	rng := rand.New(rand.NewSource(1))
	counts := map[int]int{}
	for i := 0; i < 300; i++ {
		g, underflow := rouletteSelect(pool, rng)
		assert.True(t, underflow)
		counts[g.ID]++
	}
	assert.Len(t, counts, 3)

	pool[1].AdjustedFitness = 1
	g, underflow := rouletteSelect(pool, rng)
	assert.False(t, underflow)
	assert.Equal(t, 2, g.ID)
}
