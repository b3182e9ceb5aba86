// Package sim is a small kinematic driving simulator: a closed track made of
// wall segments, ray distance sensors and a point vehicle.
package sim

import (
	"fmt"
	"math"

	"github.com/baldhumanity/neatdrive/fitness"
	"gonum.org/v1/gonum/spatial/r2"
)

// Segment is a wall in the XZ plane; r2 Y holds world Z.
type Segment struct {
	A, B r2.Vec
}

// Track is immutable once built and may be shared by every vehicle.
type Track struct {
	Name         string
	Waypoints    []fitness.Waypoint
	Walls        []Segment
	Spawn        fitness.Vec3
	SpawnHeading float64
}

// OvalConfig describes an elliptical circuit centred on the origin.
type OvalConfig struct {
	RadiusX        float64 `ini:"radius_x" yaml:"radius_x"`
	RadiusZ        float64 `ini:"radius_z" yaml:"radius_z"`
	Width          float64 `ini:"width" yaml:"width"`
	Waypoints      int     `ini:"waypoints" yaml:"waypoints"`
	Segments       int     `ini:"segments" yaml:"segments"` // wall segments per side
	WaypointRadius float64 `ini:"waypoint_radius" yaml:"waypoint_radius"`
}

// DefaultOvalConfig returns the circuit used by the racetrack example.
func DefaultOvalConfig() OvalConfig {
	return OvalConfig{
		RadiusX:        60,
		RadiusZ:        35,
		Width:          12,
		Waypoints:      16,
		Segments:       64,
		WaypointRadius: 6,
	}
}

// Validate checks that the oval can be built.
func (c OvalConfig) Validate() error {
	if c.Width <= 0 || c.Width >= 2*math.Min(c.RadiusX, c.RadiusZ) {
		return fmt.Errorf("track width %g must be positive and narrower than the oval", c.Width)
	}
	if c.Waypoints < 2 || c.Segments < 8 || c.WaypointRadius <= 0 {
		return fmt.Errorf("oval needs at least 2 waypoints, 8 segments and a positive waypoint radius")
	}
	return nil
}

// NewOval builds the track. Vehicles spawn on the centre line at +X facing
// +Z; waypoints are spread evenly ahead of them, the last one on the start
// line so that reaching it completes a lap.
func NewOval(cfg OvalConfig) (*Track, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	at := func(theta, offset float64) r2.Vec {
		return r2.Vec{
			X: (cfg.RadiusX + offset) * math.Cos(theta),
			Y: (cfg.RadiusZ + offset) * math.Sin(theta),
		}
	}

	t := &Track{
		Name:         "oval",
		Spawn:        fitness.Vec3{X: cfg.RadiusX},
		SpawnHeading: math.Pi / 2,
	}
	half := cfg.Width / 2
	for i := 0; i < cfg.Segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(cfg.Segments)
		b := 2 * math.Pi * float64(i+1) / float64(cfg.Segments)
		t.Walls = append(t.Walls,
			Segment{A: at(a, -half), B: at(b, -half)},
			Segment{A: at(a, half), B: at(b, half)},
		)
	}
	for i := 1; i <= cfg.Waypoints; i++ {
		p := at(2*math.Pi*float64(i)/float64(cfg.Waypoints), 0)
		t.Waypoints = append(t.Waypoints, fitness.Waypoint{X: p.X, Z: p.Y, Radius: cfg.WaypointRadius})
	}
	return t, nil
}

// Collides reports whether a disc of the given radius at p touches a wall.
func (t *Track) Collides(p r2.Vec, radius float64) bool {
	for _, w := range t.Walls {
		if distanceToSegment(p, w) < radius {
			return true
		}
	}
	return false
}

func distanceToSegment(p r2.Vec, s Segment) float64 {
	e := r2.Sub(s.B, s.A)
	l2 := r2.Norm2(e)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, s.A))
	}
	u := math.Max(0, math.Min(1, r2.Dot(r2.Sub(p, s.A), e)/l2))
	closest := r2.Add(s.A, r2.Scale(u, e))
	return r2.Norm(r2.Sub(p, closest))
}
