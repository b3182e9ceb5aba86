package trainer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/baldhumanity/neatdrive/agent"
	"github.com/baldhumanity/neatdrive/fitness"
	"github.com/baldhumanity/neatdrive/neat"
	"github.com/baldhumanity/neatdrive/sim"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Config is the single immutable record consumed by a training run.
type Config struct {
	NEAT    neat.Config       `yaml:"neat"`
	Fitness fitness.Config    `yaml:"fitness"`
	Control agent.Config      `yaml:"control"`
	Episode EpisodeConfig     `yaml:"episode"`
	Track   sim.OvalConfig    `yaml:"track"`
	Vehicle sim.VehicleConfig `yaml:"vehicle"`
}

// EpisodeConfig bounds the simulation of one generation.
type EpisodeConfig struct {
	TickDT   float64 `ini:"tick_dt" yaml:"tick_dt"`     // seconds of simulated time per tick
	MaxTicks int     `ini:"max_ticks" yaml:"max_ticks"` // hard cap per episode; reaching it finishes the episode
	Workers  int     `ini:"workers" yaml:"workers"`     // concurrent episodes; 0 uses GOMAXPROCS
}

// DefaultConfig combines the defaults of every component.
func DefaultConfig() *Config {
	return &Config{
		NEAT:    *neat.DefaultConfig(),
		Fitness: fitness.DefaultConfig(),
		Control: agent.DefaultConfig(),
		Episode: EpisodeConfig{
			TickDT:   0.05,
			MaxTicks: 1200,
			Workers:  0,
		},
		Track:   sim.DefaultOvalConfig(),
		Vehicle: sim.DefaultVehicleConfig(),
	}
}

// LoadConfig reads a run configuration. Files ending in .yaml or .yml are
// decoded as YAML, anything else as INI. Missing keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := cfg.loadINI(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadINI(path string) error {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, path)
	if err != nil {
		return fmt.Errorf("failed to load config file '%s': %w", path, err)
	}
	if err := c.NEAT.MapINI(file); err != nil {
		return err
	}

	sections := []struct {
		name   string
		target any
	}{
		{"Fitness", &c.Fitness},
		{"Control", &c.Control},
		{"Episode", &c.Episode},
		{"Track", &c.Track},
		{"Vehicle", &c.Vehicle},
	}
	for _, s := range sections {
		if !file.HasSection(s.name) {
			continue
		}
		if err := file.Section(s.name).MapTo(s.target); err != nil {
			return fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}
	return nil
}

// Validate checks every component configuration.
func (c *Config) Validate() error {
	if err := c.NEAT.Validate(); err != nil {
		return err
	}
	if c.NEAT.Genome.NumInputs != fitness.NumSensors || c.NEAT.Genome.NumOutputs != 2 {
		return fmt.Errorf("%w: driving needs %d inputs and 2 outputs, got %d/%d", neat.ErrInvalidConfig,
			fitness.NumSensors, c.NEAT.Genome.NumInputs, c.NEAT.Genome.NumOutputs)
	}
	if err := c.Fitness.Validate(); err != nil {
		return err
	}
	if err := c.Control.Validate(); err != nil {
		return err
	}
	if c.Episode.TickDT <= 0 || c.Episode.MaxTicks <= 0 {
		return fmt.Errorf("%w: tick_dt and max_ticks must be positive", neat.ErrInvalidConfig)
	}
	if c.Episode.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", neat.ErrInvalidConfig)
	}
	if err := c.Track.Validate(); err != nil {
		return fmt.Errorf("%w: %v", neat.ErrInvalidConfig, err)
	}
	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("%w: %v", neat.ErrInvalidConfig, err)
	}
	return nil
}

// WriteYAML saves the resolved configuration.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
