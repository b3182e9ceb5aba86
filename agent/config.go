package agent

import (
	"fmt"
	"math"

	"github.com/baldhumanity/neatdrive/neat"
)

// Config shapes raw network outputs into vehicle commands.
type Config struct {
	SteeringDeadZone float64 `ini:"steering_dead_zone" yaml:"steering_dead_zone"` // |steering| below this is 0
	MinThrottle      float64 `ini:"min_throttle" yaml:"min_throttle"`
	MaxThrottle      float64 `ini:"max_throttle" yaml:"max_throttle"`
	ReportInterval   float64 `ini:"report_interval" yaml:"report_interval"` // seconds between live reports; 0 disables
}

// DefaultConfig lets agents brake lightly but mostly drive forward.
func DefaultConfig() Config {
	return Config{
		SteeringDeadZone: 0.05,
		MinThrottle:      -0.2,
		MaxThrottle:      1,
		ReportInterval:   1,
	}
}

// Validate checks the shaping ranges.
func (c *Config) Validate() error {
	if c.SteeringDeadZone < 0 || c.SteeringDeadZone >= 1 {
		return fmt.Errorf("%w: steering_dead_zone must be in [0, 1)", neat.ErrInvalidConfig)
	}
	if c.MinThrottle < -1 || c.MaxThrottle > 1 || c.MinThrottle > c.MaxThrottle {
		return fmt.Errorf("%w: throttle range [%g, %g] must lie within [-1, 1]", neat.ErrInvalidConfig, c.MinThrottle, c.MaxThrottle)
	}
	if c.ReportInterval < 0 {
		return fmt.Errorf("%w: report_interval cannot be negative", neat.ErrInvalidConfig)
	}
	return nil
}

// Shape turns the network outputs (throttle, steering) into a command.
// Outputs are clamped to [-1, 1], steering inside the dead zone becomes 0 and
// throttle is mapped linearly onto [MinThrottle, MaxThrottle].
func (c *Config) Shape(outputs []float64) Command {
	var throttle, steering float64
	if len(outputs) > 0 {
		throttle = clampUnit(outputs[0])
	}
	if len(outputs) > 1 {
		steering = clampUnit(outputs[1])
	}
	if math.Abs(steering) < c.SteeringDeadZone {
		steering = 0
	}
	return Command{
		Throttle: c.MinThrottle + (throttle+1)/2*(c.MaxThrottle-c.MinThrottle),
		Steering: steering,
	}
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
