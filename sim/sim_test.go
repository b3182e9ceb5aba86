package sim

import (
	"math"
	"testing"

	"github.com/baldhumanity/neatdrive/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

// corridor is a straight track along +X with walls at z = ±5 and an end wall at x = 20.
func corridor() *Track {
	return &Track{
		Walls: []Segment{
			{A: r2.Vec{X: -5, Y: -5}, B: r2.Vec{X: 20, Y: -5}},
			{A: r2.Vec{X: -5, Y: 5}, B: r2.Vec{X: 20, Y: 5}},
			{A: r2.Vec{X: 20, Y: -5}, B: r2.Vec{X: 20, Y: 5}},
		},
	}
}

func TestNewOval(t *testing.T) {
	cfg := DefaultOvalConfig()
	track, err := NewOval(cfg)
	require.NoError(t, err)

	assert.Len(t, track.Waypoints, cfg.Waypoints)
	assert.Len(t, track.Walls, 2*cfg.Segments)
	last := track.Waypoints[len(track.Waypoints)-1]
	assert.InDelta(t, track.Spawn.X, last.X, 1e-9)
	assert.InDelta(t, track.Spawn.Z, last.Z, 1e-9)
	assert.False(t, track.Collides(r2.Vec{X: track.Spawn.X, Y: track.Spawn.Z}, 1))
	assert.True(t, track.Collides(r2.Vec{X: cfg.RadiusX + cfg.Width/2, Y: 0}, 0.5))

	cfg.Width = 100
	_, err = NewOval(cfg)
	assert.Error(t, err)
}

func TestOvalConfigValidate(t *testing.T) {
	require.NoError(t, DefaultOvalConfig().Validate())

	for name, mutate := range map[string]func(*OvalConfig){
		"zero width":      func(c *OvalConfig) { c.Width = 0 },
		"too wide":        func(c *OvalConfig) { c.Width = 2 * c.RadiusZ },
		"one waypoint":    func(c *OvalConfig) { c.Waypoints = 1 },
		"few segments":    func(c *OvalConfig) { c.Segments = 4 },
		"waypoint radius": func(c *OvalConfig) { c.WaypointRadius = 0 },
	} {
		cfg := DefaultOvalConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestCastRays(t *testing.T) {
	track := corridor()
	rays := track.CastRays(r2.Vec{}, 0, 40)

	assert.InDelta(t, 0.5, rays[2], 1e-9, "end wall 20 ahead")
	assert.InDelta(t, 5.0/40, rays[0], 1e-9, "side wall 5 to the left")
	assert.InDelta(t, 5.0/40, rays[4], 1e-9)
	assert.InDelta(t, 5*math.Sqrt2/40, rays[1], 1e-9)

	far := track.CastRays(r2.Vec{}, 0, 4)
	assert.Equal(t, [5]float64{1, 1, 1, 1, 1}, far)
}

func TestVehicleStopsAtWall(t *testing.T) {
	track := corridor()
	v := NewVehicle(track, DefaultVehicleConfig())

	for i := 0; i < 5; i++ {
		v.Drive(agent.Command{Throttle: 1}, 0.1)
	}
	tel := v.Telemetry()
	require.False(t, tel.Collision)
	assert.Positive(t, tel.Position.X)
	assert.InDelta(t, 0, tel.Position.Z, 1e-9)
	assert.Positive(t, tel.Velocity.X)

	for i := 0; i < 100 && !v.Telemetry().Collision; i++ {
		v.Drive(agent.Command{Throttle: 1}, 0.1)
	}
	tel = v.Telemetry()
	assert.True(t, tel.Collision)
	assert.Less(t, tel.Position.X, 20.0)
	assert.Zero(t, tel.Velocity.X)
}

func TestVehicleSteers(t *testing.T) {
	v := NewVehicle(&Track{}, DefaultVehicleConfig())
	v.Drive(agent.Command{Throttle: 1, Steering: 1}, 0.1)
	assert.InDelta(t, 0.25, v.Telemetry().Heading, 1e-9)
	v.Drive(agent.Command{Steering: -1}, 0.1)
	assert.InDelta(t, 0, v.Telemetry().Heading, 1e-9)
}

func TestSimulatorSpawnsIndependentVehicles(t *testing.T) {
	track, err := NewOval(DefaultOvalConfig())
	require.NoError(t, err)
	s, err := NewSimulator(track, DefaultVehicleConfig())
	require.NoError(t, err)

	a, b := s.Spawn(1), s.Spawn(2)
	a.Drive(agent.Command{Throttle: 1}, 0.5)
	assert.NotEqual(t, a.Telemetry().Position, b.Telemetry().Position)
	assert.Equal(t, track.Spawn, b.Telemetry().Position)
	assert.Same(t, track, s.Track())

	_, err = NewSimulator(track, VehicleConfig{})
	assert.Error(t, err)
}
