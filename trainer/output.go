package trainer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/baldhumanity/neatdrive/neat"
	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"
)

// OutputWriter writes run artifacts into one directory: generations.csv,
// config.yaml and champion.yaml.
type OutputWriter struct {
	dir             string
	generationsFile *os.File
	headerWritten   bool
}

// NewOutputWriter creates the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputWriter(dir string) (*OutputWriter, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	return &OutputWriter{dir: dir, generationsFile: f}, nil
}

// WriteConfig saves the resolved configuration as YAML.
func (o *OutputWriter) WriteConfig(cfg *Config) error {
	if o == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(o.dir, "config.yaml"))
}

// WriteGeneration appends one row to generations.csv.
func (o *OutputWriter) WriteGeneration(stats neat.GenerationStats) error {
	if o == nil {
		return nil
	}
	records := []neat.GenerationStats{stats}
	if !o.headerWritten {
		if err := gocsv.Marshal(records, o.generationsFile); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		o.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, o.generationsFile); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

// WriteChampion saves the genome record as champion.yaml, replacing any earlier one.
func (o *OutputWriter) WriteChampion(rec neat.GenomeRecord) error {
	if o == nil {
		return nil
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling champion: %w", err)
	}
	if err := os.WriteFile(filepath.Join(o.dir, "champion.yaml"), data, 0644); err != nil {
		return fmt.Errorf("writing champion.yaml: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (o *OutputWriter) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

// Close closes generations.csv.
func (o *OutputWriter) Close() error {
	if o == nil {
		return nil
	}
	return o.generationsFile.Close()
}
