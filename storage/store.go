// Package storage archives genomes and generation statistics per training run.
package storage

import (
	"context"
	"fmt"

	"github.com/baldhumanity/neatdrive/neat"
)

// Store persists run artifacts. Saving an existing key overwrites it.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, runID string, genome neat.GenomeRecord) error
	GetGenome(ctx context.Context, runID string, id int) (neat.GenomeRecord, bool, error)
	SaveGeneration(ctx context.Context, runID string, stats neat.GenerationStats) error
	// Generations returns the saved statistics of a run ordered by generation.
	Generations(ctx context.Context, runID string) ([]neat.GenerationStats, error)
	Close() error
}

// NewStore returns the backend named by kind: "memory" (or empty) or "sqlite".
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}
