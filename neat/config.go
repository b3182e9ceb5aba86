package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the evolutionary algorithm.
type Config struct {
	Neat         NeatConfig         `yaml:"neat"`
	Genome       GenomeConfig       `yaml:"genome"`
	Speciation   SpeciationConfig   `yaml:"speciation"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Stagnation   StagnationConfig   `yaml:"stagnation"`
}

// NeatConfig holds run-level parameters.
type NeatConfig struct {
	PopSize              int     `ini:"pop_size" yaml:"pop_size"`
	Seed                 int64   `ini:"seed" yaml:"seed"`
	FitnessThreshold     float64 `ini:"fitness_threshold" yaml:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination" yaml:"no_fitness_termination"`
	RecurrentPasses      int     `ini:"recurrent_passes" yaml:"recurrent_passes"` // relaxation passes for cyclic networks
}

// GenomeConfig holds parameters for the structure and mutation of genomes.
type GenomeConfig struct {
	NumInputs         int    `ini:"num_inputs" yaml:"num_inputs"`
	NumOutputs        int    `ini:"num_outputs" yaml:"num_outputs"`
	FeedForward       bool   `ini:"feed_forward" yaml:"feed_forward"`             // if true, cycles are never created
	InitialConnection string `ini:"initial_connection" yaml:"initial_connection"` // unconnected | full

	NodeAddProb              float64 `ini:"node_add_prob" yaml:"node_add_prob"`
	ConnAddProb              float64 `ini:"conn_add_prob" yaml:"conn_add_prob"`
	DisableProb              float64 `ini:"disable_prob" yaml:"disable_prob"`
	EnableProb               float64 `ini:"enable_prob" yaml:"enable_prob"`
	SingleStructuralMutation bool    `ini:"single_structural_mutation" yaml:"single_structural_mutation"`

	ActivationDefault    string   `ini:"activation_default" yaml:"activation_default"`
	ActivationOptions    []string `ini:"activation_options" delim:" " yaml:"activation_options"`
	ActivationMutateRate float64  `ini:"activation_mutate_rate" yaml:"activation_mutate_rate"`
	AggregationDefault   string   `ini:"aggregation_default" yaml:"aggregation_default"`

	BiasInitStdev   float64 `ini:"bias_init_stdev" yaml:"bias_init_stdev"`
	BiasMutateRate  float64 `ini:"bias_mutate_rate" yaml:"bias_mutate_rate"`
	BiasMutatePower float64 `ini:"bias_mutate_power" yaml:"bias_mutate_power"`
	BiasMaxValue    float64 `ini:"bias_max_value" yaml:"bias_max_value"`
	BiasMinValue    float64 `ini:"bias_min_value" yaml:"bias_min_value"`

	WeightInitRange   float64 `ini:"weight_init_range" yaml:"weight_init_range"`
	WeightMutateRate  float64 `ini:"weight_mutate_rate" yaml:"weight_mutate_rate"`   // per-genome chance of touching weights
	WeightReplaceRate float64 `ini:"weight_replace_rate" yaml:"weight_replace_rate"` // per-connection chance of reset instead of perturbation
	WeightMutatePower float64 `ini:"weight_mutate_power" yaml:"weight_mutate_power"` // max absolute perturbation
	WeightMaxValue    float64 `ini:"weight_max_value" yaml:"weight_max_value"`
	WeightMinValue    float64 `ini:"weight_min_value" yaml:"weight_min_value"`
}

// SpeciationConfig holds the compatibility distance coefficients.
type SpeciationConfig struct {
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`
	ExcessCoefficient      float64 `ini:"excess_coefficient" yaml:"excess_coefficient"`
	DisjointCoefficient    float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient"`
	WeightCoefficient      float64 `ini:"weight_coefficient" yaml:"weight_coefficient"`
	NormalizeThreshold     int     `ini:"normalize_threshold" yaml:"normalize_threshold"` // below this gene count N is 1
}

// ReproductionConfig holds parameters related to reproduction.
type ReproductionConfig struct {
	Elitism           int     `ini:"elitism" yaml:"elitism"`
	SurvivalThreshold float64 `ini:"survival_threshold" yaml:"survival_threshold"`
	CrossoverProb     float64 `ini:"crossover_prob" yaml:"crossover_prob"`
}

// StagnationConfig holds parameters related to species staleness.
type StagnationConfig struct {
	SpeciesFitnessFunc string `ini:"species_fitness_func" yaml:"species_fitness_func"`
	MaxStagnation      int    `ini:"max_stagnation" yaml:"max_stagnation"` // 0 disables stale species culling
	SpeciesElitism     int    `ini:"species_elitism" yaml:"species_elitism"`
}

// DefaultConfig returns a configuration for the 5-sensor, 2-actuator driving task.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:              30,
			Seed:                 1,
			FitnessThreshold:     0,
			NoFitnessTermination: true,
			RecurrentPasses:      3,
		},
		Genome: GenomeConfig{
			NumInputs:         5,
			NumOutputs:        2,
			InitialConnection: "unconnected",

			NodeAddProb: 0.03,
			ConnAddProb: 0.3,
			DisableProb: 0.01,
			EnableProb:  0.01,

			ActivationDefault:    "tanh",
			ActivationOptions:    []string{"tanh"},
			ActivationMutateRate: 0,
			AggregationDefault:   "sum",

			BiasInitStdev:   0,
			BiasMutateRate:  0.1,
			BiasMutatePower: 0.2,
			BiasMaxValue:    5,
			BiasMinValue:    -5,

			WeightInitRange:   1,
			WeightMutateRate:  0.8,
			WeightReplaceRate: 0.1,
			WeightMutatePower: 0.5,
			WeightMaxValue:    5,
			WeightMinValue:    -5,
		},
		Speciation: SpeciationConfig{
			CompatibilityThreshold: 3,
			ExcessCoefficient:      1,
			DisjointCoefficient:    1,
			WeightCoefficient:      0.4,
			NormalizeThreshold:     20,
		},
		Reproduction: ReproductionConfig{
			Elitism:           2,
			SurvivalThreshold: 0.5,
			CrossoverProb:     0.75,
		},
		Stagnation: StagnationConfig{
			SpeciesFitnessFunc: "max",
			MaxStagnation:      0,
			SpeciesElitism:     1,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file.
// Keys missing from the file keep their DefaultConfig values.
func LoadConfig(filePath string) (*Config, error) {
	file, err := loadINI(filePath)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	if err := config.MapINI(file); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadINI(filePath string) (*ini.File, error) {
	file, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return file, nil
}

// MapINI maps the [NEAT], [Genome], [Speciation], [Reproduction] and
// [Stagnation] sections of an already loaded INI file onto c.
func (c *Config) MapINI(file *ini.File) error {
	sections := []struct {
		name   string
		target any
	}{
		{"NEAT", &c.Neat},
		{"Genome", &c.Genome},
		{"Speciation", &c.Speciation},
		{"Reproduction", &c.Reproduction},
		{"Stagnation", &c.Stagnation},
	}
	for _, s := range sections {
		if !file.HasSection(s.name) {
			continue
		}
		if err := file.Section(s.name).MapTo(s.target); err != nil {
			return fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	c.Genome.InitialConnection = cleanIniString(c.Genome.InitialConnection)
	c.Genome.ActivationDefault = cleanIniString(c.Genome.ActivationDefault)
	c.Genome.AggregationDefault = cleanIniString(c.Genome.AggregationDefault)
	c.Stagnation.SpeciesFitnessFunc = cleanIniString(c.Stagnation.SpeciesFitnessFunc)
	for i, opt := range c.Genome.ActivationOptions {
		c.Genome.ActivationOptions[i] = strings.TrimSpace(opt)
	}
	return nil
}

// Validate checks every parameter and returns an error wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return configError("pop_size must be positive")
	}
	if c.Neat.RecurrentPasses <= 0 {
		return configError("recurrent_passes must be positive")
	}
	if err := c.Genome.Validate(); err != nil {
		return err
	}

	sp := c.Speciation
	if sp.CompatibilityThreshold <= 0 {
		return configError("compatibility_threshold must be positive")
	}
	if sp.ExcessCoefficient < 0 || sp.DisjointCoefficient < 0 || sp.WeightCoefficient < 0 {
		return configError("compatibility coefficients cannot be negative")
	}
	if sp.NormalizeThreshold < 0 {
		return configError("normalize_threshold cannot be negative")
	}

	r := c.Reproduction
	if r.Elitism < 0 || r.Elitism >= c.Neat.PopSize {
		return configError("elitism must be in [0, pop_size)")
	}
	if r.SurvivalThreshold <= 0 || r.SurvivalThreshold > 1 {
		return configError("survival_threshold must be in (0, 1]")
	}
	if err := checkProbability("crossover_prob", r.CrossoverProb); err != nil {
		return err
	}

	if _, ok := StatFunctions[strings.ToLower(c.Stagnation.SpeciesFitnessFunc)]; !ok {
		return configError("invalid species_fitness_func '%s'", c.Stagnation.SpeciesFitnessFunc)
	}
	if c.Stagnation.MaxStagnation < 0 || c.Stagnation.SpeciesElitism < 0 {
		return configError("max_stagnation and species_elitism cannot be negative")
	}
	return nil
}

// Validate checks the genome parameters.
func (gc *GenomeConfig) Validate() error {
	if gc.NumInputs <= 0 {
		return configError("num_inputs must be positive")
	}
	if gc.NumOutputs <= 0 {
		return configError("num_outputs must be positive")
	}
	switch gc.InitialConnection {
	case "unconnected", "full":
	default:
		return configError("invalid initial_connection type '%s'", gc.InitialConnection)
	}

	probs := []struct {
		name string
		v    float64
	}{
		{"node_add_prob", gc.NodeAddProb},
		{"conn_add_prob", gc.ConnAddProb},
		{"disable_prob", gc.DisableProb},
		{"enable_prob", gc.EnableProb},
		{"activation_mutate_rate", gc.ActivationMutateRate},
		{"bias_mutate_rate", gc.BiasMutateRate},
		{"weight_mutate_rate", gc.WeightMutateRate},
		{"weight_replace_rate", gc.WeightReplaceRate},
	}
	for _, p := range probs {
		if err := checkProbability(p.name, p.v); err != nil {
			return err
		}
	}

	if len(gc.ActivationOptions) == 0 {
		return configError("activation_options must be specified")
	}
	for _, name := range gc.ActivationOptions {
		if _, err := GetActivation(name); err != nil {
			return configError("%v", err)
		}
	}
	if gc.ActivationDefault != "random" {
		if _, err := GetActivation(gc.ActivationDefault); err != nil {
			return configError("%v", err)
		}
	}
	if _, err := GetAggregation(gc.AggregationDefault); err != nil {
		return configError("%v", err)
	}

	if gc.WeightInitRange < 0 || gc.WeightMutatePower < 0 || gc.BiasMutatePower < 0 || gc.BiasInitStdev < 0 {
		return configError("init ranges and mutation powers cannot be negative")
	}
	if gc.WeightMaxValue < gc.WeightMinValue {
		return configError("weight_max_value cannot be less than weight_min_value")
	}
	if gc.BiasMaxValue < gc.BiasMinValue {
		return configError("bias_max_value cannot be less than bias_min_value")
	}
	return nil
}

// InputKeys returns the node IDs of the input nodes: -1..-n.
func (gc *GenomeConfig) InputKeys() []int {
	keys := make([]int, gc.NumInputs)
	for i := range keys {
		keys[i] = -(i + 1)
	}
	return keys
}

// OutputKeys returns the node IDs of the output nodes: 0..m-1.
func (gc *GenomeConfig) OutputKeys() []int {
	keys := make([]int, gc.NumOutputs)
	for i := range keys {
		keys[i] = i
	}
	return keys
}

func checkProbability(name string, v float64) error {
	if v < 0 || v > 1 {
		return configError("%s must be between 0 and 1", name)
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
