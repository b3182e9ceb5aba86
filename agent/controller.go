// Package agent binds a genome and its network to one simulated vehicle.
package agent

import (
	"fmt"

	"github.com/baldhumanity/neatdrive/fitness"
	"github.com/baldhumanity/neatdrive/neat"
	"github.com/baldhumanity/neatdrive/neat/nn"
)

// Telemetry is what a vehicle reports each tick.
type Telemetry struct {
	Sensors   [fitness.NumSensors]float64 // 1 is clear, lower is closer to a wall
	Position  fitness.Vec3
	Velocity  fitness.Vec3
	Heading   float64
	Collision bool
}

// Command is a shaped actuator request, both fields in [-1, 1].
type Command struct {
	Throttle float64
	Steering float64
}

// Vehicle is the physics collaborator driven by a Controller.
type Vehicle interface {
	Telemetry() Telemetry
	Drive(cmd Command, dt float64)
}

// Reporter receives live and final fitness reports.
type Reporter interface {
	FitnessUpdate(agentID int, fitness float64, metrics fitness.Metrics)
	Eliminated(agentID int)
}

type nopReporter struct{}

func (nopReporter) FitnessUpdate(int, float64, fitness.Metrics) {}
func (nopReporter) Eliminated(int)                              {}

// Controller runs one genome for one episode.
type Controller struct {
	ID int

	genome   *neat.Genome
	net      *nn.Network
	tracker  *fitness.Tracker
	vehicle  Vehicle
	cfg      Config
	reporter Reporter

	sinceReport float64
	done        bool
}

// NewController checks that the network matches the sensor and actuator
// layout and returns a controller ready to tick.
func NewController(id int, genome *neat.Genome, net *nn.Network, tracker *fitness.Tracker, vehicle Vehicle, cfg Config) (*Controller, error) {
	if genome == nil || net == nil || tracker == nil || vehicle == nil {
		return nil, fmt.Errorf("agent %d: genome, network, tracker and vehicle are required", id)
	}
	if n := len(genome.InputIDs()); n != fitness.NumSensors {
		return nil, fmt.Errorf("%w: agent %d: genome has %d inputs, vehicle has %d sensors",
			neat.ErrInvalidConfig, id, n, fitness.NumSensors)
	}
	if n := len(genome.OutputIDs()); n != 2 {
		return nil, fmt.Errorf("%w: agent %d: genome has %d outputs, want throttle and steering",
			neat.ErrInvalidConfig, id, n)
	}
	return &Controller{
		ID:       id,
		genome:   genome,
		net:      net,
		tracker:  tracker,
		vehicle:  vehicle,
		cfg:      cfg,
		reporter: nopReporter{},
	}, nil
}

// SetReporter installs r; nil restores the no-op reporter.
func (c *Controller) SetReporter(r Reporter) {
	if r == nil {
		r = nopReporter{}
	}
	c.reporter = r
}

// Tick advances the episode by dt: telemetry is scored first, then, if the
// episode is still running, the network drives the vehicle.
func (c *Controller) Tick(dt float64) (fitness.State, error) {
	if c.done {
		return c.tracker.State(), nil
	}
	tel := c.vehicle.Telemetry()
	state := c.tracker.Update(fitness.Sample{
		DT:        dt,
		Position:  tel.Position,
		Velocity:  tel.Velocity,
		Heading:   tel.Heading,
		Sensors:   tel.Sensors,
		Collision: tel.Collision,
	})
	if state.Terminal() {
		c.finish(state)
		return state, nil
	}

	outputs, err := c.net.Activate(tel.Sensors[:])
	if err != nil {
		return state, fmt.Errorf("agent %d: %w", c.ID, err)
	}
	c.vehicle.Drive(c.cfg.Shape(outputs), dt)

	if c.cfg.ReportInterval > 0 {
		c.sinceReport += dt
		if c.sinceReport >= c.cfg.ReportInterval {
			c.sinceReport = 0
			c.reporter.FitnessUpdate(c.ID, c.tracker.Fitness(), c.tracker.Metrics())
		}
	}
	return state, nil
}

// Stop ends a running episode as Finished, e.g. when the tick budget is spent.
func (c *Controller) Stop() {
	if c.done {
		return
	}
	c.tracker.Finish()
	c.finish(c.tracker.State())
}

// finish records the final fitness on the genome and sends the final report.
func (c *Controller) finish(state fitness.State) {
	c.done = true
	c.genome.SetFitness(c.tracker.Fitness())
	c.reporter.FitnessUpdate(c.ID, c.tracker.Fitness(), c.tracker.Metrics())
	if state == fitness.Eliminated || state == fitness.TimedOut {
		c.reporter.Eliminated(c.ID)
	}
}

// Done reports whether the episode has ended.
func (c *Controller) Done() bool { return c.done }

// Genome returns the controlled genome.
func (c *Controller) Genome() *neat.Genome { return c.genome }

// Metrics returns the tracker's current metrics.
func (c *Controller) Metrics() fitness.Metrics { return c.tracker.Metrics() }
