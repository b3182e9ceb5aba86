package fitness

import (
	"fmt"

	"github.com/baldhumanity/neatdrive/neat"
)

// Config holds the weights, normalization caps and termination rules used to
// score an episode. Every positive term is weight * min(value, cap) / cap.
type Config struct {
	WaypointReward float64 `ini:"waypoint_reward" yaml:"waypoint_reward"`
	Laps           int     `ini:"laps" yaml:"laps"` // laps to finish the episode
	LapBonus       float64 `ini:"lap_bonus" yaml:"lap_bonus"`
	LapTimeCap     float64 `ini:"lap_time_cap" yaml:"lap_time_cap"` // laps slower than this earn no bonus

	MovementWeight  float64 `ini:"movement_weight" yaml:"movement_weight"`
	MovementCap     float64 `ini:"movement_cap" yaml:"movement_cap"`
	SurvivalWeight  float64 `ini:"survival_weight" yaml:"survival_weight"`
	SurvivalCap     float64 `ini:"survival_cap" yaml:"survival_cap"`
	SpeedWeight     float64 `ini:"speed_weight" yaml:"speed_weight"`
	SpeedCap        float64 `ini:"speed_cap" yaml:"speed_cap"`
	ClearanceWeight float64 `ini:"clearance_weight" yaml:"clearance_weight"`
	ClearanceCap    float64 `ini:"clearance_cap" yaml:"clearance_cap"`

	ForwardClearThreshold float64 `ini:"forward_clear_threshold" yaml:"forward_clear_threshold"`
	ForwardClearBonus     float64 `ini:"forward_clear_bonus" yaml:"forward_clear_bonus"`
	MinProgressSpeed      float64 `ini:"min_progress_speed" yaml:"min_progress_speed"`
	IdleSpeed             float64 `ini:"idle_speed" yaml:"idle_speed"`

	TimeoutPenalty    float64 `ini:"timeout_penalty" yaml:"timeout_penalty"`
	CollisionPenalty  float64 `ini:"collision_penalty" yaml:"collision_penalty"` // per collision
	InactivityPenalty float64 `ini:"inactivity_penalty" yaml:"inactivity_penalty"`
	InactivityCap     float64 `ini:"inactivity_cap" yaml:"inactivity_cap"`
	BackwardPenalty   float64 `ini:"backward_penalty" yaml:"backward_penalty"`
	BackwardCap       float64 `ini:"backward_cap" yaml:"backward_cap"`

	MaxCollisions     int     `ini:"max_collisions" yaml:"max_collisions"`         // 0 never eliminates
	InactivityTimeout float64 `ini:"inactivity_timeout" yaml:"inactivity_timeout"` // seconds without progress
	EpisodeTimeout    float64 `ini:"episode_timeout" yaml:"episode_timeout"`       // seconds
}

// DefaultConfig returns the scoring used by the racetrack example.
func DefaultConfig() Config {
	return Config{
		WaypointReward: 10,
		Laps:           1,
		LapBonus:       100,
		LapTimeCap:     120,

		MovementWeight:  10,
		MovementCap:     500,
		SurvivalWeight:  5,
		SurvivalCap:     60,
		SpeedWeight:     10,
		SpeedCap:        20,
		ClearanceWeight: 5,
		ClearanceCap:    60,

		ForwardClearThreshold: 0.8,
		ForwardClearBonus:     0.5,
		MinProgressSpeed:      1,
		IdleSpeed:             0.5,

		TimeoutPenalty:    10,
		CollisionPenalty:  5,
		InactivityPenalty: 5,
		InactivityCap:     30,
		BackwardPenalty:   10,
		BackwardCap:       50,

		MaxCollisions:     1,
		InactivityTimeout: 5,
		EpisodeTimeout:    60,
	}
}

// Validate checks that caps and timeouts are positive and that weights are not negative.
func (c *Config) Validate() error {
	type param struct {
		name string
		v    float64
	}
	caps := []param{
		{"lap_time_cap", c.LapTimeCap},
		{"movement_cap", c.MovementCap},
		{"survival_cap", c.SurvivalCap},
		{"speed_cap", c.SpeedCap},
		{"clearance_cap", c.ClearanceCap},
		{"inactivity_cap", c.InactivityCap},
		{"backward_cap", c.BackwardCap},
		{"inactivity_timeout", c.InactivityTimeout},
		{"episode_timeout", c.EpisodeTimeout},
	}
	for _, p := range caps {
		if p.v <= 0 {
			return invalid("%s must be positive", p.name)
		}
	}
	weights := []param{
		{"waypoint_reward", c.WaypointReward},
		{"lap_bonus", c.LapBonus},
		{"movement_weight", c.MovementWeight},
		{"survival_weight", c.SurvivalWeight},
		{"speed_weight", c.SpeedWeight},
		{"clearance_weight", c.ClearanceWeight},
		{"forward_clear_bonus", c.ForwardClearBonus},
		{"min_progress_speed", c.MinProgressSpeed},
		{"idle_speed", c.IdleSpeed},
		{"timeout_penalty", c.TimeoutPenalty},
		{"collision_penalty", c.CollisionPenalty},
		{"inactivity_penalty", c.InactivityPenalty},
		{"backward_penalty", c.BackwardPenalty},
	}
	for _, p := range weights {
		if p.v < 0 {
			return invalid("%s cannot be negative", p.name)
		}
	}
	if c.ForwardClearThreshold < 0 || c.ForwardClearThreshold > 1 {
		return invalid("forward_clear_threshold must be between 0 and 1")
	}
	if c.Laps <= 0 {
		return invalid("laps must be positive")
	}
	if c.MaxCollisions < 0 {
		return invalid("max_collisions cannot be negative")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: fitness: %s", neat.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
