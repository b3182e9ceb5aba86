package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
)

// checkpointData holds the parts of a Population needed to resume a run.
// The Config is not saved; the caller supplies it again on load.
type checkpointData struct {
	Genomes      []*Genome
	Species      []*Species
	NextSpecies  int
	Generation   int
	Best         *Genome
	Innovation   InnovationState
	NextGenomeID int
}

// SaveCheckpoint writes the population to a gzip-compressed gob file.
func (p *Population) SaveCheckpoint(filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	data := checkpointData{
		Genomes:      p.Genomes,
		Species:      p.SpeciesSet.Species,
		NextSpecies:  p.SpeciesSet.NextID,
		Generation:   p.Generation,
		Best:         p.Best,
		Innovation:   p.Tracker.State(),
		NextGenomeID: p.NextGenomeID,
	}
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode population data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint '%s': %w", filePath, err)
	}
	return nil
}

// LoadCheckpoint restores a Population saved with SaveCheckpoint.
// The random source is reseeded from the config seed and the generation,
// so a resumed run is reproducible but does not continue the original stream.
func LoadCheckpoint(checkpointPath string, config *Config) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode population data from checkpoint: %w", err)
	}
	if len(data.Genomes) != config.Neat.PopSize {
		return nil, fmt.Errorf("checkpoint holds %d genomes, config expects %d", len(data.Genomes), config.Neat.PopSize)
	}
	for _, g := range data.Genomes {
		if err := g.Validate(&config.Genome); err != nil {
			return nil, fmt.Errorf("checkpoint does not match config: %w", err)
		}
	}

	stagnation, err := NewStagnation(&config.Stagnation)
	if err != nil {
		return nil, fmt.Errorf("failed to re-initialize stagnation from loaded config: %w", err)
	}
	species := NewSpeciesSet(&config.Speciation)
	species.Species = data.Species
	if data.NextSpecies > 0 {
		species.NextID = data.NextSpecies
	}

	return &Population{
		Config:       config,
		Genomes:      data.Genomes,
		SpeciesSet:   species,
		Stagnation:   stagnation,
		Generation:   data.Generation,
		Best:         data.Best,
		Tracker:      TrackerFromState(data.Innovation),
		NextGenomeID: data.NextGenomeID,
		Logger:       slog.Default(),
		rng:          rand.New(rand.NewSource(config.Neat.Seed + int64(data.Generation))),
	}, nil
}
