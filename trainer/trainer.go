// Package trainer runs generations of driving episodes and evolves the population.
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/baldhumanity/neatdrive/agent"
	"github.com/baldhumanity/neatdrive/fitness"
	"github.com/baldhumanity/neatdrive/neat"
	"github.com/baldhumanity/neatdrive/neat/nn"
	"github.com/baldhumanity/neatdrive/sim"
	"github.com/baldhumanity/neatdrive/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Simulator provides the shared track and one independent vehicle per agent.
type Simulator interface {
	Track() *sim.Track
	Spawn(agentID int) agent.Vehicle
}

// Trainer owns the current population of a run.
type Trainer struct {
	cfg      *Config
	sim      Simulator
	pop      *neat.Population
	cache    *nn.Cache
	reporter Reporter
	store    storage.Store
	metrics  *Metrics
	output   *OutputWriter
	logger   *slog.Logger
	runID    string

	checkpointDir   string
	checkpointEvery int
	bestFitness     float64
	hasBest         bool
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithReporter sets the reporter that receives agent and generation reports.
func WithReporter(r Reporter) Option { return func(t *Trainer) { t.reporter = r } }

// WithStore archives each generation's statistics and champion in s.
// The store must already be initialized.
func WithStore(s storage.Store) Option { return func(t *Trainer) { t.store = s } }

// WithMetrics updates m after every episode and generation.
func WithMetrics(m *Metrics) Option { return func(t *Trainer) { t.metrics = m } }

// WithOutput writes generation rows and the champion to o.
func WithOutput(o *OutputWriter) Option { return func(t *Trainer) { t.output = o } }

// WithLogger sets the logger used by the trainer and its population.
func WithLogger(l *slog.Logger) Option { return func(t *Trainer) { t.logger = l } }

// WithPopulation resumes from p instead of seeding a new population.
func WithPopulation(p *neat.Population) Option { return func(t *Trainer) { t.pop = p } }

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option { return func(t *Trainer) { t.runID = id } }

// WithCheckpoints saves the population to dir every n generations.
func WithCheckpoints(dir string, n int) Option {
	return func(t *Trainer) {
		t.checkpointDir = dir
		t.checkpointEvery = n
	}
}

// New validates cfg and prepares a run.
func New(cfg *Config, simulator Simulator, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if simulator == nil {
		return nil, fmt.Errorf("trainer needs a simulator")
	}
	t := &Trainer{
		cfg:      cfg,
		sim:      simulator,
		cache:    nn.NewCache(cfg.NEAT.Neat.RecurrentPasses),
		reporter: LogReporter{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.runID == "" {
		t.runID = uuid.NewString()
	}
	if t.pop == nil {
		pop, err := neat.NewPopulation(&cfg.NEAT, nil)
		if err != nil {
			return nil, err
		}
		t.pop = pop
	}
	t.pop.Logger = t.logger
	return t, nil
}

// RunID identifies the run in the store.
func (t *Trainer) RunID() string { return t.runID }

// Population returns the current, not yet evaluated, generation.
func (t *Trainer) Population() *neat.Population { return t.pop }

// Run evaluates and evolves up to generations times, stopping early once the
// fitness threshold is reached. It returns the best genome seen.
func (t *Trainer) Run(ctx context.Context, generations int) (*neat.Genome, error) {
	for i := 0; i < generations; i++ {
		if _, err := t.RunGeneration(ctx); err != nil {
			return t.pop.Best, err
		}
		if t.pop.Solved() {
			t.logger.Info("fitness threshold reached", "generation", t.pop.Generation-1, "fitness", t.pop.Best.Fitness)
			break
		}
	}
	return t.pop.Best, nil
}

// RunGeneration drives every genome through one episode concurrently and
// then evolves the population. If ctx is cancelled the episodes stop, the
// population is left as it was and ctx.Err() is returned.
func (t *Trainer) RunGeneration(ctx context.Context) (neat.GenerationStats, error) {
	pop := t.pop
	t.cache.Retain(pop.Genomes)

	workers := t.cfg.Episode.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, genome := range pop.Unevaluated() {
		genome := genome
		g.Go(func() error {
			return t.runEpisode(gctx, genome)
		})
	}
	if err := g.Wait(); err != nil {
		return neat.GenerationStats{}, err
	}
	if err := ctx.Err(); err != nil {
		return neat.GenerationStats{}, err
	}

	next, stats, err := pop.Evolve()
	if err != nil {
		return stats, err
	}
	t.pop = next

	if err := t.record(ctx, pop, stats); err != nil {
		return stats, err
	}
	if t.checkpointDir != "" && t.checkpointEvery > 0 && next.Generation%t.checkpointEvery == 0 {
		path := filepath.Join(t.checkpointDir, fmt.Sprintf("gen-%d.gz", next.Generation))
		if err := next.SaveCheckpoint(path); err != nil {
			return stats, err
		}
		t.logger.Info("saved checkpoint", "path", path)
	}
	return stats, nil
}

// runEpisode drives one genome until its episode ends, the tick budget is
// spent or ctx is cancelled. Only a complete episode records a fitness.
func (t *Trainer) runEpisode(ctx context.Context, genome *neat.Genome) error {
	net, err := t.cache.Get(genome)
	if err != nil {
		return fmt.Errorf("compiling genome %d: %w", genome.ID, err)
	}
	track := t.sim.Track()
	tracker := fitness.NewTracker(t.cfg.Fitness, track.Spawn, track.Waypoints)
	c, err := agent.NewController(genome.ID, genome, net, tracker, t.sim.Spawn(genome.ID), t.cfg.Control)
	if err != nil {
		return err
	}
	c.SetReporter(t.reporter)

	for tick := 0; tick < t.cfg.Episode.MaxTicks; tick++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		state, err := c.Tick(t.cfg.Episode.TickDT)
		if err != nil {
			return err
		}
		if state.Terminal() {
			break
		}
	}
	c.Stop()
	t.metrics.observeEpisode(c.Metrics())
	return nil
}

// record publishes a finished generation to every configured sink.
func (t *Trainer) record(ctx context.Context, evaluated *neat.Population, stats neat.GenerationStats) error {
	t.reporter.GenerationStats(stats)
	t.metrics.observeGeneration(stats)
	if err := t.output.WriteGeneration(stats); err != nil {
		return err
	}

	var champion *neat.Genome
	for _, g := range evaluated.Genomes {
		if g.ID == stats.BestGenomeID {
			champion = g
			break
		}
	}
	if champion == nil {
		return nil
	}
	if t.store != nil {
		if err := t.store.SaveGeneration(ctx, t.runID, stats); err != nil {
			return fmt.Errorf("saving generation %d: %w", stats.Generation, err)
		}
		if err := t.store.SaveGenome(ctx, t.runID, champion.Record()); err != nil {
			return fmt.Errorf("saving champion %d: %w", champion.ID, err)
		}
	}
	if !t.hasBest || champion.Fitness > t.bestFitness {
		t.hasBest = true
		t.bestFitness = champion.Fitness
		if err := t.output.WriteChampion(champion.Record()); err != nil {
			return err
		}
	}
	return nil
}
