package neat

import "math"

// Distance returns the compatibility distance between two genomes:
//
//	(c1·E + c2·D)/N + c3·W
//
// E counts excess genes (innovations beyond the other genome's highest), D
// disjoint genes, W is the mean absolute weight difference of matching genes
// (0 if none) and N the larger gene count, or 1 when both genomes have fewer
// than normalize_threshold genes.
func Distance(a, b *Genome, config *SpeciationConfig) float64 {
	ac, bc := a.Connections, b.Connections
	maxA, maxB := 0, 0
	if len(ac) > 0 {
		maxA = ac[len(ac)-1].Innovation
	}
	if len(bc) > 0 {
		maxB = bc[len(bc)-1].Innovation
	}

	var excess, disjoint, matching int
	weightDiff := 0.0
	i, j := 0, 0
	for i < len(ac) || j < len(bc) {
		switch {
		case j >= len(bc) || (i < len(ac) && ac[i].Innovation < bc[j].Innovation):
			if ac[i].Innovation > maxB {
				excess++
			} else {
				disjoint++
			}
			i++
		case i >= len(ac) || bc[j].Innovation < ac[i].Innovation:
			if bc[j].Innovation > maxA {
				excess++
			} else {
				disjoint++
			}
			j++
		default:
			weightDiff += math.Abs(ac[i].Weight - bc[j].Weight)
			matching++
			i++
			j++
		}
	}

	n := float64(max(len(ac), len(bc)))
	if len(ac) < config.NormalizeThreshold && len(bc) < config.NormalizeThreshold {
		n = 1
	}
	if n < 1 {
		n = 1
	}

	d := (config.ExcessCoefficient*float64(excess) + config.DisjointCoefficient*float64(disjoint)) / n
	if matching > 0 {
		d += config.WeightCoefficient * weightDiff / float64(matching)
	}
	return d
}

// GenomeDistanceCache memoizes distances between genome pairs for one speciation round.
type GenomeDistanceCache struct {
	distances map[[2]int]float64
	config    *SpeciationConfig
	Hits      int
	Misses    int
}

// NewGenomeDistanceCache creates an empty cache.
func NewGenomeDistanceCache(config *SpeciationConfig) *GenomeDistanceCache {
	return &GenomeDistanceCache{
		distances: make(map[[2]int]float64),
		config:    config,
	}
}

// Distance calculates or retrieves the distance between two genomes.
func (dc *GenomeDistanceCache) Distance(a, b *Genome) float64 {
	key := [2]int{a.ID, b.ID}
	if key[0] > key[1] {
		key[0], key[1] = key[1], key[0]
	}
	if d, ok := dc.distances[key]; ok {
		dc.Hits++
		return d
	}
	dc.Misses++
	d := Distance(a, b, dc.config)
	dc.distances[key] = d
	return d
}

// Values returns every distance computed so far.
func (dc *GenomeDistanceCache) Values() []float64 {
	out := make([]float64, 0, len(dc.distances))
	for _, d := range dc.distances {
		out = append(out, d)
	}
	return out
}
