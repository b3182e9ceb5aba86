// Package fitness turns per-tick driving telemetry into an episode score.
package fitness

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// NumSensors is the number of distance rays a vehicle reports.
const NumSensors = 5

// Sample is one simulation tick as seen by the tracker.
type Sample struct {
	DT        float64
	Position  Vec3
	Velocity  Vec3
	Heading   float64 // yaw in radians; 0 faces +X, positive turns toward +Z
	Sensors   [NumSensors]float64
	Collision bool // in contact with a wall this tick
}

// Forward returns the unit vector a heading faces in the XZ plane.
func Forward(heading float64) Vec3 {
	return Vec3{X: math.Cos(heading), Z: math.Sin(heading)}
}

// Tracker accumulates the Metrics of one agent over one episode.
//
// Update moves the tracker through Running -> {Finished, Eliminated, TimedOut}.
// The fitness is finalized once, on the terminal transition; afterwards the
// tracker ignores further samples. A Tracker is owned by a single goroutine.
type Tracker struct {
	cfg       Config
	waypoints []Waypoint
	metrics   Metrics

	lastPos   Vec3
	ticks     int
	lapStart  float64
	lapBonus  float64
	inContact bool
}

// NewTracker starts an episode at spawn. waypoints are visited in order and
// the track is a loop: after the last one the first is the target again.
func NewTracker(cfg Config, spawn Vec3, waypoints []Waypoint) *Tracker {
	return &Tracker{
		cfg:       cfg,
		waypoints: waypoints,
		lastPos:   spawn,
	}
}

// Update consumes one tick and returns the resulting state.
func (t *Tracker) Update(s Sample) State {
	if t.metrics.State.Terminal() {
		return t.metrics.State
	}
	m := &t.metrics
	dt := math.Max(s.DT, 0)

	m.Distance += r3.Norm(r3.Sub(s.Position, t.lastPos))
	t.lastPos = s.Position
	m.Elapsed += dt
	t.ticks++

	speed := r3.Norm(s.Velocity)
	m.AverageSpeed += (speed - m.AverageSpeed) / float64(t.ticks)
	forwardSpeed := r3.Dot(s.Velocity, Forward(s.Heading))
	if forwardSpeed < 0 {
		m.BackwardDistance += -forwardSpeed * dt
	}

	gained := t.advance(s.Position)

	sum := 0.0
	for _, v := range s.Sensors {
		sum += v
	}
	m.Clearance += sum / NumSensors * dt
	if s.Sensors[NumSensors/2] >= t.cfg.ForwardClearThreshold {
		m.Clearance += t.cfg.ForwardClearBonus * dt
	}

	if gained || forwardSpeed >= t.cfg.MinProgressSpeed {
		m.LastProgress = m.Elapsed
	}
	if speed < t.cfg.IdleSpeed {
		m.InactiveTime += dt
	}
	if s.Collision && !t.inContact {
		m.Collisions++
	}
	t.inContact = s.Collision

	switch {
	case m.Laps >= t.cfg.Laps:
		t.finalize(Finished)
	case t.cfg.MaxCollisions > 0 && m.Collisions >= t.cfg.MaxCollisions:
		t.finalize(Eliminated)
	case m.Elapsed-m.LastProgress >= t.cfg.InactivityTimeout:
		t.finalize(TimedOut)
	case m.Elapsed >= t.cfg.EpisodeTimeout:
		t.finalize(Finished)
	default:
		m.Fitness = t.score()
	}
	return m.State
}

// advance moves to the next waypoint when the current target is reached.
func (t *Tracker) advance(p Vec3) bool {
	n := len(t.waypoints)
	if n == 0 {
		return false
	}
	m := &t.metrics
	target := m.CheckpointsReached % n
	if !t.waypoints[target].Reached(p) {
		return false
	}
	m.CheckpointsReached++
	if target == n-1 {
		lap := m.Elapsed - t.lapStart
		t.lapStart = m.Elapsed
		m.Laps++
		m.LastLapTime = lap
		if m.BestLapTime == 0 || lap < m.BestLapTime {
			m.BestLapTime = lap
		}
		t.lapBonus += t.cfg.LapBonus * math.Max(0, 1-lap/t.cfg.LapTimeCap)
	}
	return true
}

// Finish ends a running episode as Finished. It returns false if the episode
// had already ended.
func (t *Tracker) Finish() bool {
	if t.metrics.State.Terminal() {
		return false
	}
	t.finalize(Finished)
	return true
}

func (t *Tracker) finalize(s State) {
	t.metrics.State = s
	t.metrics.Fitness = t.score()
}

// score applies the weighting table to the current metrics.
func (t *Tracker) score() float64 {
	c, m := &t.cfg, &t.metrics
	total := c.MovementWeight*norm(m.Distance, c.MovementCap) +
		c.SurvivalWeight*norm(m.Elapsed, c.SurvivalCap) +
		c.SpeedWeight*norm(m.AverageSpeed, c.SpeedCap) +
		c.ClearanceWeight*norm(m.Clearance, c.ClearanceCap) +
		float64(m.CheckpointsReached)*c.WaypointReward +
		t.lapBonus

	total -= float64(m.Collisions) * c.CollisionPenalty
	total -= c.InactivityPenalty * norm(m.InactiveTime, c.InactivityCap)
	total -= c.BackwardPenalty * norm(m.BackwardDistance, c.BackwardCap)
	if m.State == TimedOut {
		total -= c.TimeoutPenalty
	}
	return math.Max(0, total)
}

func norm(v, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return math.Min(v, limit) / limit
}

// Fitness returns the live score while running and the final score afterwards.
func (t *Tracker) Fitness() float64 { return t.metrics.Fitness }

// State returns the episode state.
func (t *Tracker) State() State { return t.metrics.State }

// Metrics returns a copy of the accumulated metrics.
func (t *Tracker) Metrics() Metrics { return t.metrics }
