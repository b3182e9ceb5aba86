package nn

import (
	"sync"

	"github.com/baldhumanity/neatdrive/neat"
)

// Cache holds compiled networks keyed by genome ID. Entries are never
// modified after insertion, so a Network obtained from the cache can be
// shared between goroutines.
type Cache struct {
	passes int

	mu   sync.RWMutex
	nets map[int]*Network
}

// NewCache creates a cache compiling recurrent networks with the given passes.
func NewCache(passes int) *Cache {
	return &Cache{passes: passes, nets: make(map[int]*Network)}
}

// Get returns the compiled network of g, compiling it on first use.
// Genome IDs must identify gene content; a genome's genes may not change
// once it has been compiled.
func (c *Cache) Get(g *neat.Genome) (*Network, error) {
	c.mu.RLock()
	net, ok := c.nets[g.ID]
	c.mu.RUnlock()
	if ok {
		return net, nil
	}

	net, err := New(g, c.passes)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.nets[g.ID]; ok {
		return existing, nil
	}
	c.nets[g.ID] = net
	return net, nil
}

// Retain drops every entry whose genome is not in genomes.
func (c *Cache) Retain(genomes []*neat.Genome) {
	keep := make(map[int]bool, len(genomes))
	for _, g := range genomes {
		keep[g.ID] = true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for id := range c.nets {
		if !keep[id] {
			delete(c.nets, id)
		}
	}
}

// Len returns the number of cached networks.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nets)
}
