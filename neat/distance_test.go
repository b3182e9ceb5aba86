package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func genomeWithGenes(id int, genes map[int]float64) *Genome {
	g := &Genome{ID: id}
	for inno, w := range genes {
		g.addConnection(&ConnectionGene{In: -inno, Out: 0, Weight: w, Enabled: true, Innovation: inno})
	}
	return g
}

func TestDistanceCountsExcessDisjointAndWeights(t *testing.T) {
	a := genomeWithGenes(1, map[int]float64{1: 1, 2: 0.5, 3: 0})
	b := genomeWithGenes(2, map[int]float64{1: 0, 2: 0.5, 4: 2, 5: 2})
	cfg := DefaultConfig().Speciation

	// Innovation 3 is disjoint, 4 and 5 are excess, mean weight difference 0.5.
	assert.InDelta(t, 2+1+0.4*0.5, Distance(a, b, &cfg), 1e-12)

	cfg.NormalizeThreshold = 0
	assert.InDelta(t, (2.0+1.0)/4+0.4*0.5, Distance(a, b, &cfg), 1e-12)

	cfg.ExcessCoefficient = 2
	cfg.DisjointCoefficient = 0
	assert.InDelta(t, 4.0/4+0.4*0.5, Distance(a, b, &cfg), 1e-12)
}

func TestDistanceWithoutMatchingGenes(t *testing.T) {
	a := genomeWithGenes(1, map[int]float64{1: 3})
	b := genomeWithGenes(2, nil)
	cfg := DefaultConfig().Speciation
	assert.InDelta(t, 1.0, Distance(a, b, &cfg), 1e-12)
	assert.Zero(t, Distance(b, b, &cfg))
}

func TestDistanceIsReflexiveAndSymmetric(t *testing.T) {
	cfg := testConfig()
	cfg.Genome.InitialConnection = "full"
	tracker := NewInnovationTracker(cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(12))

	var genomes []*Genome
	for i := 0; i < 6; i++ {
		g := newTestGenome(t, &cfg.Genome, tracker, rng)
		g.ID = i
		for j := 0; j < i*2; j++ {
			g.Mutate(&cfg.Genome, tracker, rng)
		}
		genomes = append(genomes, g)
	}
	for _, a := range genomes {
		assert.Zero(t, Distance(a, a, &cfg.Speciation))
		for _, b := range genomes {
			assert.Equal(t, Distance(a, b, &cfg.Speciation), Distance(b, a, &cfg.Speciation))
		}
	}
}

func TestGenomeDistanceCache(t *testing.T) {
	a := genomeWithGenes(1, map[int]float64{1: 1})
	b := genomeWithGenes(2, map[int]float64{1: 0})
	cfg := DefaultConfig().Speciation
	cache := NewGenomeDistanceCache(&cfg)

	d := cache.Distance(a, b)
	assert.Equal(t, d, cache.Distance(b, a))
	assert.Equal(t, 1, cache.Misses)
	assert.Equal(t, 1, cache.Hits)
	assert.Len(t, cache.Values(), 1)
}
