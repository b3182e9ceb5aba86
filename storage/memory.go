package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/baldhumanity/neatdrive/neat"
)

type genomeKey struct {
	runID string
	id    int
}

// MemoryStore keeps run artifacts in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[genomeKey]neat.GenomeRecord
	generations map[string]map[int]neat.GenerationStats
}

// NewMemoryStore returns an empty store; call Init before use.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init prepares an empty store, dropping anything saved before.
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[genomeKey]neat.GenomeRecord)
	s.generations = make(map[string]map[int]neat.GenerationStats)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, runID string, genome neat.GenomeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.genomes[genomeKey{runID, genome.ID}] = genome
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, runID string, id int) (neat.GenomeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return neat.GenomeRecord{}, false, errNotInitialized
	}
	genome, ok := s.genomes[genomeKey{runID, id}]
	return genome, ok, nil
}

func (s *MemoryStore) SaveGeneration(_ context.Context, runID string, stats neat.GenerationStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run, ok := s.generations[runID]
	if !ok {
		run = make(map[int]neat.GenerationStats)
		s.generations[runID] = run
	}
	run[stats.Generation] = stats
	return nil
}

func (s *MemoryStore) Generations(_ context.Context, runID string) ([]neat.GenerationStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized {
		return nil, errNotInitialized
	}
	var out []neat.GenerationStats
	for _, stats := range s.generations[runID] {
		out = append(out, stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation < out[j].Generation })
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }

var errNotInitialized = errors.New("store is not initialized")
