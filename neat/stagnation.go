package neat

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// Stagnation tracks how long each species has gone without improving.
type Stagnation struct {
	Config             *StagnationConfig
	SpeciesFitnessFunc func([]float64) float64
}

// NewStagnation creates a new stagnation tracker.
func NewStagnation(config *StagnationConfig) (*Stagnation, error) {
	fn, ok := StatFunctions[strings.ToLower(config.SpeciesFitnessFunc)]
	if !ok {
		return nil, fmt.Errorf("invalid species_fitness_func in config: %s", config.SpeciesFitnessFunc)
	}
	return &Stagnation{Config: config, SpeciesFitnessFunc: fn}, nil
}

// Update refreshes every species' staleness and returns the species allowed
// to breed. With max_stagnation > 0 species that have not improved for that
// many generations are excluded, except the species_elitism best ones. At
// least one species always remains.
func (s *Stagnation) Update(species []*Species, generation int, logger *slog.Logger) []*Species {
	if logger == nil {
		logger = slog.Default()
	}
	type scored struct {
		sp      *Species
		fitness float64
	}
	ranked := make([]scored, 0, len(species))
	for _, sp := range species {
		f := s.SpeciesFitnessFunc(sp.Fitnesses())
		if generation == sp.Created || f > sp.BestEverFitness {
			sp.BestEverFitness = f
			sp.LastImproved = generation
		}
		sp.Staleness = generation - sp.LastImproved
		ranked = append(ranked, scored{sp, f})
	}
	if s.Config.MaxStagnation <= 0 {
		return species
	}

	// Fittest first; equal fitness keeps the older species ahead.
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].fitness > ranked[j].fitness })

	var breeding []*Species
	for i, r := range ranked {
		if i < s.Config.SpeciesElitism || r.sp.Staleness < s.Config.MaxStagnation {
			breeding = append(breeding, r.sp)
			continue
		}
		logger.Info("species stagnant", "species", r.sp.ID, "staleness", r.sp.Staleness)
	}
	if len(breeding) == 0 && len(ranked) > 0 {
		breeding = append(breeding, ranked[0].sp)
	}
	sort.Slice(breeding, func(i, j int) bool { return breeding[i].ID < breeding[j].ID })
	return breeding
}
