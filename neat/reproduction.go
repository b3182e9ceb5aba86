package neat

import (
	"math"
	"math/rand"
	"sort"
)

// byFitness orders genomes by raw fitness, best first, ties by ID.
func byFitness(genomes []*Genome) []*Genome {
	out := make([]*Genome, len(genomes))
	copy(out, genomes)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Fitness != out[j].Fitness {
			return out[i].Fitness > out[j].Fitness
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// selectElites returns the n fittest genomes.
func selectElites(genomes []*Genome, n int) []*Genome {
	ranked := byFitness(genomes)
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// parentPool collects the top survival_threshold share of each species,
// at least one member per species.
func parentPool(species []*Species, survivalThreshold float64) []*Genome {
	var pool []*Genome
	for _, sp := range species {
		members := byFitness(sp.Members)
		cutoff := int(math.Ceil(survivalThreshold * float64(len(members))))
		cutoff = max(1, min(cutoff, len(members)))
		pool = append(pool, members[:cutoff]...)
	}
	return pool
}

// rouletteSelect picks a genome with probability proportional to its adjusted
// fitness; negative values count as zero. When the total is not positive the
// pick is uniform and underflow is reported. A draw that runs past the
// cumulative sum because of rounding also falls back to a uniform pick.
func rouletteSelect(pool []*Genome, rng *rand.Rand) (picked *Genome, underflow bool) {
	total := 0.0
	for _, g := range pool {
		total += math.Max(0, g.AdjustedFitness)
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return pool[rng.Intn(len(pool))], true
	}

	r := rng.Float64() * total
	cum := 0.0
	for _, g := range pool {
		cum += math.Max(0, g.AdjustedFitness)
		if r < cum {
			return g, false
		}
	}
	return pool[rng.Intn(len(pool))], false
}
