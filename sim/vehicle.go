package sim

import (
	"fmt"
	"math"

	"github.com/baldhumanity/neatdrive/agent"
	"github.com/baldhumanity/neatdrive/fitness"
	"gonum.org/v1/gonum/spatial/r2"
)

// VehicleConfig holds the kinematic limits of a vehicle.
type VehicleConfig struct {
	MaxSpeed     float64 `ini:"max_speed" yaml:"max_speed"`
	Acceleration float64 `ini:"acceleration" yaml:"acceleration"` // at full throttle
	Drag         float64 `ini:"drag" yaml:"drag"`                 // speed lost per second per unit of speed
	TurnRate     float64 `ini:"turn_rate" yaml:"turn_rate"`       // radians per second at full steering
	Radius       float64 `ini:"radius" yaml:"radius"`
	SensorRange  float64 `ini:"sensor_range" yaml:"sensor_range"`
}

// DefaultVehicleConfig returns the vehicle used by the racetrack example.
func DefaultVehicleConfig() VehicleConfig {
	return VehicleConfig{
		MaxSpeed:     20,
		Acceleration: 15,
		Drag:         0.5,
		TurnRate:     2.5,
		Radius:       1,
		SensorRange:  30,
	}
}

// Validate checks that every limit is positive.
func (c VehicleConfig) Validate() error {
	if c.MaxSpeed <= 0 || c.Acceleration <= 0 || c.TurnRate <= 0 || c.Radius <= 0 || c.SensorRange <= 0 || c.Drag < 0 {
		return fmt.Errorf("vehicle limits must be positive: %+v", c)
	}
	return nil
}

// Vehicle is a point car with speed and heading. It stops dead on contact
// with a wall and reports the collision until it moves free again.
type Vehicle struct {
	track     *Track
	cfg       VehicleConfig
	pos       r2.Vec
	heading   float64
	speed     float64
	collision bool
}

var _ agent.Vehicle = (*Vehicle)(nil)

// NewVehicle places a vehicle at the track spawn.
func NewVehicle(track *Track, cfg VehicleConfig) *Vehicle {
	return &Vehicle{
		track:   track,
		cfg:     cfg,
		pos:     r2.Vec{X: track.Spawn.X, Y: track.Spawn.Z},
		heading: track.SpawnHeading,
	}
}

// Telemetry implements agent.Vehicle.
func (v *Vehicle) Telemetry() agent.Telemetry {
	fwd := fitness.Forward(v.heading)
	return agent.Telemetry{
		Sensors:   v.track.CastRays(v.pos, v.heading, v.cfg.SensorRange),
		Position:  fitness.Vec3{X: v.pos.X, Z: v.pos.Y},
		Velocity:  fitness.Vec3{X: fwd.X * v.speed, Z: fwd.Z * v.speed},
		Heading:   v.heading,
		Collision: v.collision,
	}
}

// Drive implements agent.Vehicle. Reversing is limited to half the top speed.
func (v *Vehicle) Drive(cmd agent.Command, dt float64) {
	v.speed += (cmd.Throttle*v.cfg.Acceleration - v.cfg.Drag*v.speed) * dt
	v.speed = math.Max(-v.cfg.MaxSpeed/2, math.Min(v.cfg.MaxSpeed, v.speed))
	v.heading = math.Remainder(v.heading+cmd.Steering*v.cfg.TurnRate*dt, 2*math.Pi)

	step := r2.Vec{X: math.Cos(v.heading), Y: math.Sin(v.heading)}
	next := r2.Add(v.pos, r2.Scale(v.speed*dt, step))
	if v.track.Collides(next, v.cfg.Radius) {
		v.collision = true
		v.speed = 0
		return
	}
	v.collision = false
	v.pos = next
}

// Simulator hands out independent vehicles on one shared track.
type Simulator struct {
	track *Track
	cfg   VehicleConfig
}

// NewSimulator creates a simulator for track.
func NewSimulator(track *Track, cfg VehicleConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Simulator{track: track, cfg: cfg}, nil
}

// Track returns the shared track.
func (s *Simulator) Track() *Track { return s.track }

// Spawn returns a fresh vehicle at the start line. Vehicles do not interact.
func (s *Simulator) Spawn(int) agent.Vehicle { return NewVehicle(s.track, s.cfg) }
