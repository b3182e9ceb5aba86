package sim

import (
	"math"

	"github.com/baldhumanity/neatdrive/fitness"
	"gonum.org/v1/gonum/spatial/r2"
)

// SensorAngles are the ray directions relative to the heading, ordered
// left, left-center, center, right-center, right.
var SensorAngles = [fitness.NumSensors]float64{math.Pi / 2, math.Pi / 4, 0, -math.Pi / 4, -math.Pi / 2}

// CastRays returns the normalized distance to the nearest wall along each
// sensor ray: 1 when nothing is within maxRange, 0 at contact.
func (t *Track) CastRays(origin r2.Vec, heading, maxRange float64) [fitness.NumSensors]float64 {
	var out [fitness.NumSensors]float64
	for i, angle := range SensorAngles {
		dir := r2.Vec{X: math.Cos(heading + angle), Y: math.Sin(heading + angle)}
		out[i] = math.Min(t.raycast(origin, dir, maxRange), maxRange) / maxRange
	}
	return out
}

// raycast returns the distance along dir to the first wall, or +Inf.
func (t *Track) raycast(o, dir r2.Vec, maxRange float64) float64 {
	best := math.Inf(1)
	for _, w := range t.Walls {
		e := r2.Sub(w.B, w.A)
		denom := r2.Cross(dir, e)
		if math.Abs(denom) < 1e-12 {
			continue
		}
		rel := r2.Sub(w.A, o)
		dist := r2.Cross(rel, e) / denom
		u := r2.Cross(rel, dir) / denom
		if dist >= 0 && u >= 0 && u <= 1 && dist < best {
			best = dist
		}
	}
	return best
}
