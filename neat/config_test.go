package neat

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "neat.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
[NEAT]
pop_size = 50
seed     = 7

[Genome]
num_inputs         = 3
initial_connection = full   # connect every input to every output
activation_options = tanh sigmoid relu

[Speciation]
compatibility_threshold = 2.5
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Neat.PopSize)
	assert.Equal(t, int64(7), cfg.Neat.Seed)
	assert.Equal(t, 3, cfg.Genome.NumInputs)
	assert.Equal(t, "full", cfg.Genome.InitialConnection)
	assert.Equal(t, []string{"tanh", "sigmoid", "relu"}, cfg.Genome.ActivationOptions)
	assert.Equal(t, 2.5, cfg.Speciation.CompatibilityThreshold)

	defaults := DefaultConfig()
	assert.Equal(t, defaults.Genome.NumOutputs, cfg.Genome.NumOutputs)
	assert.Equal(t, defaults.Reproduction, cfg.Reproduction)
	assert.Equal(t, defaults.Stagnation, cfg.Stagnation)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"negative pop":     "[NEAT]\npop_size = -1\n",
		"bad probability":  "[Genome]\nconn_add_prob = 1.5\n",
		"bad activation":   "[Genome]\nactivation_options = tanh wobble\n",
		"bad connection":   "[Genome]\ninitial_connection = partial\n",
		"bad fitness func": "[Stagnation]\nspecies_fitness_func = mode\n",
		"elitism too big":  "[NEAT]\npop_size = 2\n[Reproduction]\nelitism = 2\n",
		"inverted bounds":  "[Genome]\nweight_max_value = -6\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfigFile(t, content))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidConfig))
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	assert.Equal(t, []int{-1, -2, -3, -4, -5}, DefaultConfig().Genome.InputKeys())
	assert.Equal(t, []int{0, 1}, DefaultConfig().Genome.OutputKeys())
}
