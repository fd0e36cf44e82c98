// Package observe carries progress events of detection runs to loggers and
// metrics without the algorithms knowing about either.
package observe

import (
	"context"
	"time"

	"github.com/go-sod/rad/internal/logging"
	"github.com/go-sod/rad/internal/metrics"
)

type Stage string

const (
	StageFit         Stage = "fit"
	StageSlice       Stage = "slice"
	StageCluster     Stage = "cluster"
	StageReconstruct Stage = "reconstruct"
	StageScore       Stage = "score"
	StageEmit        Stage = "emit"
	StagePersist     Stage = "persist"
	StageNotify      Stage = "notify"
)

// Event reports a finished stage. Count is the number of items the stage
// produced (windows, centroids, samples, anomalies). Value carries the
// threshold of a score stage.
type Event struct {
	RunID    string
	Stage    Stage
	Duration time.Duration
	Count    int
	Value    float64
	Err      error
}

type Hook interface {
	Observe(ctx context.Context, ev Event)
}

type HookFunc func(ctx context.Context, ev Event)

func (f HookFunc) Observe(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Multi calls every non-nil hook in order.
func Multi(hooks ...Hook) Hook {
	var filtered multi
	for _, h := range hooks {
		if h != nil {
			filtered = append(filtered, h)
		}
	}
	return filtered
}

type multi []Hook

func (m multi) Observe(ctx context.Context, ev Event) {
	for _, h := range m {
		h.Observe(ctx, ev)
	}
}

type nop struct{}

func (nop) Observe(context.Context, Event) {}

func Nop() Hook {
	return nop{}
}

type runIDKey struct{}

// WithRunID tags every event observed under ctx that carries no run id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func RunIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Since builds an event for a stage started at start.
func Since(stage Stage, start time.Time, count int, err error) Event {
	return Event{Stage: stage, Duration: time.Since(start), Count: count, Err: err}
}

// LogHook writes every event to the logger carried by the context.
type LogHook struct{}

func (LogHook) Observe(ctx context.Context, ev Event) {
	runID := ev.RunID
	if runID == "" {
		runID = RunIDFromContext(ctx)
	}
	logger := logging.FromContext(ctx).With(
		"run_id", runID,
		"stage", string(ev.Stage),
		"duration", ev.Duration,
		"count", ev.Count,
	)
	if ev.Err != nil {
		logger.Errorw("stage failed", "error", ev.Err)
		return
	}
	logger.Debugw("stage finished")
}

// MetricsHook records stage latencies and item counts, and the threshold
// and anomaly count of every score stage.
type MetricsHook struct{}

func (MetricsHook) Observe(ctx context.Context, ev Event) {
	metrics.RecordStage(ctx, string(ev.Stage), ev.Duration, ev.Count, ev.Err)
	if ev.Stage == StageScore && ev.Err == nil {
		metrics.RecordRun(ctx, ev.Value, ev.Count)
	}
}
