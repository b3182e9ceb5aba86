package fitness

import (
	"errors"
	"testing"

	"github.com/baldhumanity/neatdrive/neat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lineTrack(n int) []Waypoint {
	wps := make([]Waypoint, n)
	for i := range wps {
		wps[i] = Waypoint{X: float64(10 * (i + 1)), Z: 0, Radius: 2}
	}
	return wps
}

func clearSensors() [NumSensors]float64 {
	return [NumSensors]float64{1, 1, 1, 1, 1}
}

// drive moves along +X at speed for ticks of dt and returns the final state.
func drive(tr *Tracker, from *Vec3, speed, dt float64, ticks int) State {
	state := tr.State()
	for i := 0; i < ticks; i++ {
		from.X += speed * dt
		state = tr.Update(Sample{DT: dt, Position: *from, Velocity: Vec3{X: speed}, Sensors: clearSensors()})
		if state.Terminal() {
			break
		}
	}
	return state
}

func TestTrackerTimesOutAfterThreeWaypoints(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InactivityTimeout = 2
	cfg.EpisodeTimeout = 100
	tr := NewTracker(cfg, Vec3{}, lineTrack(10))

	pos := Vec3{}
	// 30 units at 10 u/s passes the waypoints at x=10, 20 and 30.
	require.Equal(t, Running, drive(tr, &pos, 10, 0.1, 30))
	assert.Equal(t, 3, tr.Metrics().CheckpointsReached)
	live := tr.Fitness()
	assert.Positive(t, live)

	state := Running
	for i := 0; i < 100 && state == Running; i++ {
		state = tr.Update(Sample{DT: 0.1, Position: pos, Sensors: clearSensors()})
	}
	require.Equal(t, TimedOut, state)

	m := tr.Metrics()
	assert.Equal(t, 3, m.CheckpointsReached)
	assert.Equal(t, TimedOut, m.State)
	assert.GreaterOrEqual(t, m.Fitness, 0.0)
	assert.InDelta(t, 2.0, m.Elapsed-m.LastProgress, 0.11)
}

func TestTrackerWaypointsAreSequential(t *testing.T) {
	tr := NewTracker(DefaultConfig(), Vec3{}, lineTrack(3))

	// Jumping straight onto the second waypoint does not count.
	tr.Update(Sample{DT: 0.1, Position: Vec3{X: 20}, Velocity: Vec3{X: 5}, Sensors: clearSensors()})
	assert.Zero(t, tr.Metrics().CheckpointsReached)

	tr.Update(Sample{DT: 0.1, Position: Vec3{X: 10}, Velocity: Vec3{X: -5}, Sensors: clearSensors()})
	assert.Equal(t, 1, tr.Metrics().CheckpointsReached)
	tr.Update(Sample{DT: 0.1, Position: Vec3{X: 10.5}, Velocity: Vec3{X: 5}, Sensors: clearSensors()})
	assert.Equal(t, 1, tr.Metrics().CheckpointsReached, "a waypoint is only counted once")
	tr.Update(Sample{DT: 0.1, Position: Vec3{X: 20, Y: 50}, Velocity: Vec3{X: 5}, Sensors: clearSensors()})
	assert.Equal(t, 2, tr.Metrics().CheckpointsReached, "height is ignored")
}

func TestTrackerFinishesAfterLaps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Laps = 2
	tr := NewTracker(cfg, Vec3{}, []Waypoint{{X: 5, Radius: 1}, {X: 0, Radius: 1}})

	points := []float64{5, 0, 5, 0}
	var state State
	for _, x := range points {
		state = tr.Update(Sample{DT: 1, Position: Vec3{X: x}, Velocity: Vec3{X: 5}, Sensors: clearSensors()})
	}
	require.Equal(t, Finished, state)
	m := tr.Metrics()
	assert.Equal(t, 2, m.Laps)
	assert.Equal(t, 4, m.CheckpointsReached)
	assert.Equal(t, 2.0, m.LastLapTime)
	assert.Equal(t, 2.0, m.BestLapTime)
}

func TestTrackerEliminatesOnCollision(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxCollisions = 2
	tr := NewTracker(cfg, Vec3{}, lineTrack(5))

	pos := Vec3{}
	drive(tr, &pos, 10, 0.1, 15)
	before := tr.Fitness()

	// Staying in contact counts as one collision.
	assert.Equal(t, Running, tr.Update(Sample{DT: 0.1, Position: pos, Velocity: Vec3{X: 10}, Collision: true}))
	assert.Equal(t, Running, tr.Update(Sample{DT: 0.1, Position: pos, Velocity: Vec3{X: 10}, Collision: true}))
	assert.Equal(t, 1, tr.Metrics().Collisions)
	tr.Update(Sample{DT: 0.1, Position: pos, Velocity: Vec3{X: 10}})
	assert.Equal(t, Eliminated, tr.Update(Sample{DT: 0.1, Position: pos, Velocity: Vec3{X: 10}, Collision: true}))

	final := tr.Fitness()
	assert.Less(t, final, before+cfg.SurvivalWeight)

	// Terminal: later samples change nothing.
	pos.X += 100
	assert.Equal(t, Eliminated, tr.Update(Sample{DT: 1, Position: pos, Velocity: Vec3{X: 10}, Sensors: clearSensors()}))
	assert.Equal(t, final, tr.Fitness())
	assert.Equal(t, 2, tr.Metrics().Collisions)
	assert.False(t, tr.Finish())
}

func TestTrackerEpisodeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EpisodeTimeout = 1
	tr := NewTracker(cfg, Vec3{}, nil)

	pos := Vec3{}
	assert.Equal(t, Finished, drive(tr, &pos, 5, 0.25, 20))
	assert.InDelta(t, 1.0, tr.Metrics().Elapsed, 1e-9)
}

func TestTrackerBackwardAndIdlePenalties(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InactivityTimeout = 100
	forward := NewTracker(cfg, Vec3{}, nil)
	backward := NewTracker(cfg, Vec3{}, nil)

	for i := 1; i <= 10; i++ {
		forward.Update(Sample{DT: 0.1, Position: Vec3{X: float64(i)}, Velocity: Vec3{X: 10}, Heading: 0, Sensors: clearSensors()})
		backward.Update(Sample{DT: 0.1, Position: Vec3{X: -float64(i)}, Velocity: Vec3{X: -10}, Heading: 0, Sensors: clearSensors()})
	}
	assert.Zero(t, forward.Metrics().BackwardDistance)
	assert.InDelta(t, 10.0, backward.Metrics().BackwardDistance, 1e-9)
	assert.Greater(t, forward.Fitness(), backward.Fitness())
	assert.InDelta(t, 10.0, forward.Metrics().AverageSpeed, 1e-9)
}

func TestTrackerFinish(t *testing.T) {
	tr := NewTracker(DefaultConfig(), Vec3{}, nil)
	pos := Vec3{}
	drive(tr, &pos, 5, 0.1, 5)
	require.True(t, tr.Finish())
	assert.Equal(t, Finished, tr.State())
	assert.GreaterOrEqual(t, tr.Fitness(), 0.0)
}

func TestTrackerClearanceBonus(t *testing.T) {
	cfg := DefaultConfig()
	open := NewTracker(cfg, Vec3{}, nil)
	blocked := NewTracker(cfg, Vec3{}, nil)

	open.Update(Sample{DT: 1, Sensors: clearSensors()})
	blocked.Update(Sample{DT: 1, Sensors: [NumSensors]float64{1, 1, 0.5, 1, 1}})
	assert.InDelta(t, 1+cfg.ForwardClearBonus, open.Metrics().Clearance, 1e-9)
	assert.InDelta(t, 0.9, blocked.Metrics().Clearance, 1e-9)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.SpeedCap = 0
	assert.True(t, errors.Is(cfg.Validate(), neat.ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.CollisionPenalty = -1
	assert.True(t, errors.Is(cfg.Validate(), neat.ErrInvalidConfig))

	cfg = DefaultConfig()
	cfg.ForwardClearThreshold = 2
	assert.Error(t, cfg.Validate())
}
