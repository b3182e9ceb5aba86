package neat

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
)

// FitnessFunc evaluates every genome of a generation and records each
// result with Genome.SetFitness.
type FitnessFunc func(genomes []*Genome) error

// Population is one generation of the evolutionary run.
//
// A Population is treated as an immutable snapshot: Evolve never modifies the
// receiver's genomes and returns the next generation as a new value. The
// innovation tracker and random source are run-wide and shared by all
// generations of a run.
type Population struct {
	Config       *Config
	Genomes      []*Genome
	SpeciesSet   *SpeciesSet
	Stagnation   *Stagnation
	Generation   int
	Best         *Genome // best genome seen in any evaluated generation
	Tracker      *InnovationTracker
	NextGenomeID int
	Logger       *slog.Logger

	rng *rand.Rand
}

// GenerationStats summarises one call to Evolve.
type GenerationStats struct {
	Generation     int     `csv:"generation" json:"generation"`
	BestFitness    float64 `csv:"best_fitness" json:"best_fitness"`
	AverageFitness float64 `csv:"average_fitness" json:"average_fitness"`
	FitnessStdev   float64 `csv:"fitness_stdev" json:"fitness_stdev"`
	SpeciesCount   int     `csv:"species_count" json:"species_count"`
	BestGenomeID   int     `csv:"best_genome_id" json:"best_genome_id"`
	Innovations    int     `csv:"innovations" json:"innovations"`
	Underflow      bool    `csv:"selection_underflow" json:"selection_underflow"`
}

// LogValue implements slog.LogValuer.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Float64("best", s.BestFitness),
		slog.Float64("mean", s.AverageFitness),
		slog.Float64("stdev", s.FitnessStdev),
		slog.Int("species", s.SpeciesCount),
	)
}

// NewPopulation validates the config and seeds pop_size minimal genomes.
// A nil rng is replaced by one seeded from the config.
func NewPopulation(config *Config, rng *rand.Rand) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to create stagnation manager: %w", err)
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(config.Neat.Seed))
	}

	p := &Population{
		Config:       config,
		SpeciesSet:   NewSpeciesSet(&config.Speciation),
		Stagnation:   stagnation,
		Tracker:      NewInnovationTracker(config.Genome.NumOutputs),
		NextGenomeID: 1,
		Logger:       slog.Default(),
		rng:          rng,
	}
	for i := 0; i < config.Neat.PopSize; i++ {
		g, err := NewMinimalGenome(p.nextID(), &config.Genome, p.Tracker, rng)
		if err != nil {
			return nil, err
		}
		p.Genomes = append(p.Genomes, g)
	}
	return p, nil
}

func (p *Population) nextID() int {
	id := p.NextGenomeID
	p.NextGenomeID++
	return id
}

// Rand returns the run's random source.
func (p *Population) Rand() *rand.Rand {
	return p.rng
}

// Unevaluated returns the genomes that have no terminal fitness yet.
func (p *Population) Unevaluated() []*Genome {
	var out []*Genome
	for _, g := range p.Genomes {
		if !g.Evaluated {
			out = append(out, g)
		}
	}
	return out
}

// Solved reports whether the best genome reached fitness_threshold.
func (p *Population) Solved() bool {
	if p.Config.Neat.NoFitnessTermination || p.Best == nil {
		return false
	}
	return p.Best.Fitness >= p.Config.Neat.FitnessThreshold
}

// RunGeneration evaluates the population with fn and evolves it.
func (p *Population) RunGeneration(fn FitnessFunc) (*Population, GenerationStats, error) {
	if err := fn(p.Genomes); err != nil {
		return nil, GenerationStats{}, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}
	return p.Evolve()
}

// Evolve produces the next generation.
//
// It refuses to run while any genome is unevaluated. Otherwise it speciates,
// shares fitness within species, carries the elitism fittest genomes over
// unchanged, and fills the remaining slots with offspring of roulette-selected
// parents (crossover with crossover_prob, else a copy), each mutated once.
func (p *Population) Evolve() (*Population, GenerationStats, error) {
	if pending := p.Unevaluated(); len(pending) > 0 {
		return nil, GenerationStats{}, fmt.Errorf("%w: %d of %d genomes in generation %d (first: %d)",
			ErrUnevaluated, len(pending), len(p.Genomes), p.Generation, pending[0].ID)
	}
	if len(p.Genomes) == 0 {
		return nil, GenerationStats{}, errors.New("population is empty")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	work := make([]*Genome, len(p.Genomes))
	for i, g := range p.Genomes {
		work[i] = g.Copy()
	}

	species := p.SpeciesSet.clone()
	species.Speciate(work, p.Generation, logger)
	for _, sp := range species.Species {
		for _, m := range sp.Members {
			m.AdjustedFitness = m.Fitness / float64(len(sp.Members))
		}
	}
	breeding := p.Stagnation.Update(species.Species, p.Generation, logger)

	fitnesses := make([]float64, len(work))
	for i, g := range work {
		fitnesses[i] = g.Fitness
	}
	champion := byFitness(work)[0]
	best := p.Best
	if best == nil || champion.Fitness > best.Fitness {
		best = champion.Copy()
	}

	next := &Population{
		Config:       p.Config,
		SpeciesSet:   species,
		Stagnation:   p.Stagnation,
		Generation:   p.Generation + 1,
		Best:         best,
		Tracker:      p.Tracker,
		NextGenomeID: p.NextGenomeID,
		Logger:       p.Logger,
		rng:          p.rng,
	}

	popSize := p.Config.Neat.PopSize
	for _, e := range selectElites(work, p.Config.Reproduction.Elitism) {
		elite := e.Copy()
		elite.resetFitness()
		next.Genomes = append(next.Genomes, elite)
	}

	pool := parentPool(breeding, p.Config.Reproduction.SurvivalThreshold)
	underflow := false
	for len(next.Genomes) < popSize {
		mother, u1 := rouletteSelect(pool, p.rng)
		underflow = underflow || u1

		var child *Genome
		if p.rng.Float64() < p.Config.Reproduction.CrossoverProb {
			father, u2 := rouletteSelect(pool, p.rng)
			underflow = underflow || u2
			if father != mother {
				child = Crossover(next.nextID(), mother, father, &p.Config.Genome, p.rng)
			}
		}
		if child == nil {
			child = mother.CopyAs(next.nextID())
		}
		child.Mutate(&p.Config.Genome, p.Tracker, p.rng)
		next.Genomes = append(next.Genomes, child)
	}
	if underflow {
		logger.Warn("adjusted fitness total not positive, selected parents uniformly",
			"generation", p.Generation)
	}

	stats := GenerationStats{
		Generation:     p.Generation,
		BestFitness:    champion.Fitness,
		AverageFitness: Mean(fitnesses),
		FitnessStdev:   Stdev(fitnesses),
		SpeciesCount:   len(species.Species),
		BestGenomeID:   champion.ID,
		Innovations:    p.Tracker.Innovations(),
		Underflow:      underflow,
	}
	return next, stats, nil
}
