// Package metrics declares the opencensus measures recorded by detection runs
// and exposes them to Prometheus.
package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"contrib.go.opencensus.io/exporter/prometheus"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	StageLatency = stats.Float64("rad/stage_latency", "Latency of a pipeline stage", stats.UnitMilliseconds)
	StageItems   = stats.Int64("rad/stage_items", "Items processed by a pipeline stage", stats.UnitDimensionless)
	Anomalies    = stats.Int64("rad/anomalies", "Anomalies flagged by a run", stats.UnitDimensionless)
	Threshold    = stats.Float64("rad/threshold", "Residual threshold of the last run", stats.UnitDimensionless)

	KeyStage  = tag.MustNewKey("stage")
	KeyStatus = tag.MustNewKey("status")
)

var (
	registerOnce sync.Once
	registerErr  error
)

func Views() []*view.View {
	return []*view.View{
		{
			Name:        "rad/stage_latency",
			Description: "Distribution of pipeline stage latencies",
			Measure:     StageLatency,
			TagKeys:     []tag.Key{KeyStage, KeyStatus},
			Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000, 60000),
		},
		{
			Name:        "rad/stage_items",
			Description: "Items processed per stage",
			Measure:     StageItems,
			TagKeys:     []tag.Key{KeyStage},
			Aggregation: view.Sum(),
		},
		{
			Name:        "rad/stage_count",
			Description: "Number of finished stages",
			Measure:     StageLatency,
			TagKeys:     []tag.Key{KeyStage, KeyStatus},
			Aggregation: view.Count(),
		},
		{
			Name:        "rad/anomalies",
			Description: "Anomalies flagged",
			Measure:     Anomalies,
			Aggregation: view.Sum(),
		},
		{
			Name:        "rad/threshold",
			Description: "Residual threshold of the last run",
			Measure:     Threshold,
			Aggregation: view.LastValue(),
		},
	}
}

// Register registers the views once per process.
func Register() error {
	registerOnce.Do(func() {
		registerErr = view.Register(Views()...)
	})
	return registerErr
}

// NewExporter registers the views and returns a Prometheus exporter usable as
// an http.Handler.
func NewExporter(namespace string) (*prometheus.Exporter, error) {
	if err := Register(); err != nil {
		return nil, fmt.Errorf("register views: %w", err)
	}
	exporter, err := prometheus.NewExporter(prometheus.Options{Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	view.RegisterExporter(exporter)
	return exporter, nil
}

func RecordStage(ctx context.Context, stage string, d time.Duration, items int, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	_ = stats.RecordWithTags(ctx,
		[]tag.Mutator{tag.Upsert(KeyStage, stage), tag.Upsert(KeyStatus, status)},
		StageLatency.M(float64(d)/float64(time.Millisecond)),
		StageItems.M(int64(items)),
	)
}

func RecordRun(ctx context.Context, threshold float64, anomalies int) {
	stats.Record(ctx, Threshold.M(threshold), Anomalies.M(int64(anomalies)))
}
