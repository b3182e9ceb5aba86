package fitness

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a world-space position or velocity. Y is up; the track lies in the XZ plane.
type Vec3 = r3.Vec

// Waypoint is a checkpoint on the track centre line.
type Waypoint struct {
	X      float64 `json:"x" yaml:"x"`
	Z      float64 `json:"z" yaml:"z"`
	Radius float64 `json:"radius" yaml:"radius"`
}

// Reached reports whether p lies within the waypoint radius, ignoring height.
func (w Waypoint) Reached(p Vec3) bool {
	dx, dz := p.X-w.X, p.Z-w.Z
	return dx*dx+dz*dz <= w.Radius*w.Radius
}

// State is the lifecycle of one episode.
type State int

const (
	Running State = iota
	Finished
	Eliminated
	TimedOut
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Eliminated:
		return "eliminated"
	case TimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Terminal reports whether no further updates are accepted.
func (s State) Terminal() bool { return s != Running }

// Metrics is the per-episode record accumulated by a Tracker.
type Metrics struct {
	Distance           float64 `json:"distance"`
	Elapsed            float64 `json:"elapsed"`
	AverageSpeed       float64 `json:"average_speed"`
	CheckpointsReached int     `json:"checkpoints_reached"`
	Laps               int     `json:"laps"`
	LastLapTime        float64 `json:"last_lap_time"`
	BestLapTime        float64 `json:"best_lap_time"`
	Collisions         int     `json:"collisions"`
	BackwardDistance   float64 `json:"backward_distance"`
	Clearance          float64 `json:"clearance"`
	InactiveTime       float64 `json:"inactive_time"`
	LastProgress       float64 `json:"last_progress"`
	Fitness            float64 `json:"fitness"`
	State              State   `json:"state"`
}

// LogValue implements slog.LogValuer.
func (m Metrics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("state", m.State.String()),
		slog.Float64("fitness", m.Fitness),
		slog.Float64("distance", m.Distance),
		slog.Int("checkpoints", m.CheckpointsReached),
		slog.Int("collisions", m.Collisions),
	)
}
