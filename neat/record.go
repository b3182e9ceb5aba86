package neat

import (
	"fmt"
	"sort"
)

// GenomeRecord is the plain structured form of a genome used for transport
// and storage.
type GenomeRecord struct {
	ID          int                `json:"id" yaml:"id"`
	Fitness     float64            `json:"fitness" yaml:"fitness"`
	SpeciesID   int                `json:"species_id" yaml:"species_id"`
	Evaluated   bool               `json:"evaluated" yaml:"evaluated"`
	Nodes       []NodeRecord       `json:"nodes" yaml:"nodes"`
	Connections []ConnectionRecord `json:"connections" yaml:"connections"`
}

// NodeRecord is the plain form of a NodeGene.
type NodeRecord struct {
	ID          int     `json:"id" yaml:"id"`
	Role        string  `json:"role" yaml:"role"`
	Activation  string  `json:"activation" yaml:"activation"`
	Aggregation string  `json:"aggregation" yaml:"aggregation"`
	Bias        float64 `json:"bias" yaml:"bias"`
}

// ConnectionRecord is the plain form of a ConnectionGene.
type ConnectionRecord struct {
	Innovation int     `json:"innovation" yaml:"innovation"`
	In         int     `json:"in" yaml:"in"`
	Out        int     `json:"out" yaml:"out"`
	Weight     float64 `json:"weight" yaml:"weight"`
	Enabled    bool    `json:"enabled" yaml:"enabled"`
}

// Record converts the genome to its plain form.
func (g *Genome) Record() GenomeRecord {
	rec := GenomeRecord{
		ID:          g.ID,
		Fitness:     g.Fitness,
		SpeciesID:   g.SpeciesID,
		Evaluated:   g.Evaluated,
		Nodes:       make([]NodeRecord, len(g.Nodes)),
		Connections: make([]ConnectionRecord, len(g.Connections)),
	}
	for i, n := range g.Nodes {
		rec.Nodes[i] = NodeRecord{
			ID:          n.ID,
			Role:        n.Role.String(),
			Activation:  n.Activation,
			Aggregation: n.Aggregation,
			Bias:        n.Bias,
		}
	}
	for i, c := range g.Connections {
		rec.Connections[i] = ConnectionRecord{
			Innovation: c.Innovation,
			In:         c.In,
			Out:        c.Out,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
		}
	}
	return rec
}

// GenomeFromRecord rebuilds a genome from its plain form. Genes may come in
// any order; duplicate node IDs or innovation numbers are rejected.
func GenomeFromRecord(rec GenomeRecord) (*Genome, error) {
	g := &Genome{
		ID:        rec.ID,
		Fitness:   rec.Fitness,
		SpeciesID: rec.SpeciesID,
		Evaluated: rec.Evaluated,
	}
	for _, n := range rec.Nodes {
		role, err := ParseNodeRole(n.Role)
		if err != nil {
			return nil, fmt.Errorf("genome %d node %d: %w", rec.ID, n.ID, err)
		}
		aggregation := n.Aggregation
		if aggregation == "" {
			aggregation = "sum"
		}
		g.Nodes = append(g.Nodes, &NodeGene{
			ID:          n.ID,
			Role:        role,
			Activation:  n.Activation,
			Aggregation: aggregation,
			Bias:        n.Bias,
		})
	}
	for _, c := range rec.Connections {
		g.Connections = append(g.Connections, &ConnectionGene{
			In:         c.In,
			Out:        c.Out,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
			Innovation: c.Innovation,
		})
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	sort.Slice(g.Connections, func(i, j int) bool { return g.Connections[i].Innovation < g.Connections[j].Innovation })

	for i := 1; i < len(g.Nodes); i++ {
		if g.Nodes[i].ID == g.Nodes[i-1].ID {
			return nil, fmt.Errorf("genome %d: duplicate node %d", rec.ID, g.Nodes[i].ID)
		}
	}
	for i := 1; i < len(g.Connections); i++ {
		if g.Connections[i].Innovation == g.Connections[i-1].Innovation {
			return nil, fmt.Errorf("genome %d: duplicate innovation %d", rec.ID, g.Connections[i].Innovation)
		}
	}
	for _, c := range g.Connections {
		if g.Node(c.In) == nil || g.Node(c.Out) == nil {
			return nil, fmt.Errorf("genome %d: connection %d->%d references a missing node", rec.ID, c.In, c.Out)
		}
	}
	return g, nil
}
