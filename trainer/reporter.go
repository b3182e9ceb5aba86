package trainer

import (
	"log/slog"

	"github.com/baldhumanity/neatdrive/agent"
	"github.com/baldhumanity/neatdrive/fitness"
	"github.com/baldhumanity/neatdrive/neat"
)

// Reporter receives agent reports during episodes and one summary per
// generation. Agent reports arrive from concurrent episodes.
type Reporter interface {
	agent.Reporter
	GenerationStats(stats neat.GenerationStats)
}

// LogReporter writes reports to a structured logger: agent reports at debug
// level, generation summaries at info.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r LogReporter) FitnessUpdate(agentID int, f float64, m fitness.Metrics) {
	r.logger().Debug("fitness update", "agent", agentID, "fitness", f, "metrics", m)
}

func (r LogReporter) Eliminated(agentID int) {
	r.logger().Debug("agent eliminated", "agent", agentID)
}

func (r LogReporter) GenerationStats(stats neat.GenerationStats) {
	r.logger().Info("generation complete", "stats", stats)
}

// MultiReporter fans every report out to each of its reporters.
type MultiReporter []Reporter

func (m MultiReporter) FitnessUpdate(agentID int, f float64, metrics fitness.Metrics) {
	for _, r := range m {
		r.FitnessUpdate(agentID, f, metrics)
	}
}

func (m MultiReporter) Eliminated(agentID int) {
	for _, r := range m {
		r.Eliminated(agentID)
	}
}

func (m MultiReporter) GenerationStats(stats neat.GenerationStats) {
	for _, r := range m {
		r.GenerationStats(stats)
	}
}
