package trainer

import (
	"github.com/baldhumanity/neatdrive/fitness"
	"github.com/baldhumanity/neatdrive/neat"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes training progress as Prometheus collectors.
type Metrics struct {
	generation     prometheus.Gauge
	bestFitness    prometheus.Gauge
	averageFitness prometheus.Gauge
	species        prometheus.Gauge
	innovations    prometheus.Gauge
	underflows     prometheus.Counter
	episodes       *prometheus.CounterVec
	episodeFitness prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		generation: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "neatdrive_generation",
			Help: "Last fully evaluated generation.",
		}),
		bestFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "neatdrive_best_fitness",
			Help: "Best raw fitness of the last generation.",
		}),
		averageFitness: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "neatdrive_average_fitness",
			Help: "Mean raw fitness of the last generation.",
		}),
		species: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "neatdrive_species",
			Help: "Number of species in the last generation.",
		}),
		innovations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "neatdrive_innovations",
			Help: "Innovation numbers assigned so far.",
		}),
		underflows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "neatdrive_selection_underflow_total",
			Help: "Generations whose parents were selected uniformly.",
		}),
		episodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "neatdrive_episodes_total",
			Help: "Finished episodes by terminal state.",
		}, []string{"state"}),
		episodeFitness: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "neatdrive_episode_fitness",
			Help:    "Final fitness per episode.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	for _, c := range []prometheus.Collector{
		m.generation, m.bestFitness, m.averageFitness, m.species,
		m.innovations, m.underflows, m.episodes, m.episodeFitness,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeEpisode(metrics fitness.Metrics) {
	if m == nil {
		return
	}
	m.episodes.WithLabelValues(metrics.State.String()).Inc()
	m.episodeFitness.Observe(metrics.Fitness)
}

func (m *Metrics) observeGeneration(stats neat.GenerationStats) {
	if m == nil {
		return
	}
	m.generation.Set(float64(stats.Generation))
	m.bestFitness.Set(stats.BestFitness)
	m.averageFitness.Set(stats.AverageFitness)
	m.species.Set(float64(stats.SpeciesCount))
	m.innovations.Set(float64(stats.Innovations))
	if stats.Underflow {
		m.underflows.Inc()
	}
}
