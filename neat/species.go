package neat

import (
	"log/slog"
	"sort"
)

// Species represents a group of genetically similar genomes.
type Species struct {
	ID              int
	Created         int     // generation the species was founded
	LastImproved    int     // last generation its fitness summary improved
	Representative  *Genome // compared against when assigning genomes
	Members         []*Genome
	AverageFitness  float64
	BestFitness     float64
	BestEverFitness float64 // best species fitness summary seen so far
	Staleness       int     // generations since LastImproved
}

// NewSpecies creates a species founded by representative.
func NewSpecies(id, generation int, representative *Genome) *Species {
	return &Species{
		ID:             id,
		Created:        generation,
		LastImproved:   generation,
		Representative: representative,
	}
}

// Fitnesses returns the raw fitness values of all members.
func (s *Species) Fitnesses() []float64 {
	out := make([]float64, len(s.Members))
	for i, g := range s.Members {
		out[i] = g.Fitness
	}
	return out
}

// --------------------------- SpeciesSet ---------------------------

// SpeciesSet manages the collection of species across generations.
// Only representatives and staleness bookkeeping survive from one round to the next.
type SpeciesSet struct {
	Species []*Species // ordered by ID
	NextID  int
	config  *SpeciationConfig
}

// NewSpeciesSet creates an empty species set. Species IDs start at 1.
func NewSpeciesSet(config *SpeciationConfig) *SpeciesSet {
	return &SpeciesSet{NextID: 1, config: config}
}

// clone copies the set so that speciating a new generation leaves the receiver untouched.
func (ss *SpeciesSet) clone() *SpeciesSet {
	c := &SpeciesSet{NextID: ss.NextID, config: ss.config}
	for _, s := range ss.Species {
		cp := *s
		cp.Members = nil
		c.Species = append(c.Species, &cp)
	}
	return c
}

// Speciate partitions genomes into species.
//
// Genomes are visited in ID order. Each joins the first species (surviving
// species in ID order, then those founded earlier in this round) whose
// representative is closer than compatibility_threshold, otherwise it founds
// a new species. Species left without members are dropped. Afterwards every
// species' statistics are recomputed and its fittest member becomes the
// representative for the next round.
func (ss *SpeciesSet) Speciate(genomes []*Genome, generation int, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	ordered := make([]*Genome, len(genomes))
	copy(ordered, genomes)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	cache := NewGenomeDistanceCache(ss.config)
	for _, s := range ss.Species {
		s.Members = s.Members[:0]
	}

	for _, g := range ordered {
		var home *Species
		for _, s := range ss.Species {
			if cache.Distance(s.Representative, g) < ss.config.CompatibilityThreshold {
				home = s
				break
			}
		}
		if home == nil {
			home = NewSpecies(ss.NextID, generation, g)
			ss.NextID++
			ss.Species = append(ss.Species, home)
			logger.Debug("created species", "species", home.ID, "representative", g.ID)
		}
		home.Members = append(home.Members, g)
		g.SpeciesID = home.ID
	}

	alive := ss.Species[:0]
	for _, s := range ss.Species {
		if len(s.Members) == 0 {
			logger.Debug("species died out", "species", s.ID)
			continue
		}
		alive = append(alive, s)
	}
	ss.Species = alive

	for _, s := range ss.Species {
		fits := s.Fitnesses()
		s.AverageFitness = Mean(fits)
		s.BestFitness = MaxFloat(fits)
		best := s.Members[0]
		for _, m := range s.Members[1:] {
			if m.Fitness > best.Fitness {
				best = m
			}
		}
		s.Representative = best
	}

	if values := cache.Values(); len(values) > 0 {
		logger.Debug("genetic distance", "mean", Mean(values), "stdev", Stdev(values),
			"cache_hits", cache.Hits, "cache_misses", cache.Misses)
	}
}

// Get returns the species with the given ID.
func (ss *SpeciesSet) Get(id int) (*Species, bool) {
	for _, s := range ss.Species {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}
