// Package pipeline runs one detection: fit the model, reconstruct the data,
// score the residuals, then emit, persist and announce the outcome.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/go-sod/rad/internal/alert"
	"github.com/go-sod/rad/internal/artifact"
	"github.com/go-sod/rad/internal/byteutil"
	"github.com/go-sod/rad/internal/codebook"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/observe"
	runmodel "github.com/go-sod/rad/internal/run/model"
	"github.com/go-sod/rad/internal/series"
	"github.com/google/uuid"
)

type CodebookStore interface {
	Save(ctx context.Context, runID uuid.UUID, cb *codebook.Codebook) error
}

type RunStore interface {
	Store(ctx context.Context, report runmodel.Report) error
}

// codebookHolder is implemented by models that learn a dictionary.
type codebookHolder interface {
	Codebook() *codebook.Codebook
}

type Params struct {
	AnomalyFraction float64
	Compression     float64
}

// Result of a run. Reconstruction covers the first Scored samples of the
// data; Clusters holds the codeword of every reconstructed sample when the
// model labels its output.
type Result struct {
	RunID          uuid.UUID
	Threshold      float64
	Scored         int
	Dropped        int
	Anomalies      []detector.Anomaly
	Reconstruction *series.Series
	Clusters       []int
}

func WithHook(h observe.Hook) Option {
	return func(p *Pipeline) {
		p.hook = h
	}
}

func WithSink(s artifact.Sink) Option {
	return func(p *Pipeline) {
		p.sink = s
	}
}

func WithCodebookStore(s CodebookStore) Option {
	return func(p *Pipeline) {
		p.codebooks = s
	}
}

func WithRunStore(s RunStore) Option {
	return func(p *Pipeline) {
		p.runs = s
	}
}

func WithNotifier(n alert.Notifier) Option {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

// WithModelName labels the reports of this pipeline.
func WithModelName(name string) Option {
	return func(p *Pipeline) {
		p.modelName = name
	}
}

type Option func(*Pipeline)

type Pipeline struct {
	model     model.Model
	detector  *detector.Detector
	hook      observe.Hook
	sink      artifact.Sink
	codebooks CodebookStore
	runs      RunStore
	notifier  alert.Notifier
	modelName string
}

func New(m model.Model, d *detector.Detector, opts ...Option) *Pipeline {
	p := &Pipeline{
		model:    m,
		detector: d,
		hook:     observe.Nop(),
		sink:     artifact.NopSink{},
		notifier: alert.Nop{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fits the model on fitData when it is not nil and detects anomalies in
// data. A nil fitData reuses the model fitted by an earlier run.
func (p *Pipeline) Run(ctx context.Context, fitData, data *series.Series, params Params) (*Result, error) {
	runID := uuid.New()
	ctx = observe.WithRunID(ctx, runID.String())

	if fitData != nil {
		start := time.Now()
		err := p.model.Build(ctx, fitData)
		p.observe(ctx, observe.Since(observe.StageFit, start, fitData.Len(), err))
		if err != nil {
			return nil, fmt.Errorf("fit model: %w", err)
		}
	}

	start := time.Now()
	recon, err := p.model.Reconstruct(ctx, data)
	p.observe(ctx, observe.Since(observe.StageReconstruct, start, lenOf(recon), err))
	if err != nil {
		return nil, fmt.Errorf("reconstruct: %w", err)
	}
	scored := p.align(data, recon)

	start = time.Now()
	anomalies, threshold, err := p.detector.Detect(scored, recon, params.AnomalyFraction, params.Compression)
	ev := observe.Since(observe.StageScore, start, len(anomalies), err)
	ev.Value = threshold
	p.observe(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}

	res := &Result{
		RunID:          runID,
		Threshold:      threshold,
		Scored:         scored.Len(),
		Dropped:        data.Len() - scored.Len(),
		Anomalies:      anomalies,
		Reconstruction: recon,
	}
	if l, ok := p.model.(model.Labeler); ok {
		res.Clusters = l.Labels()
	}
	var cb *codebook.Codebook
	if h, ok := p.model.(codebookHolder); ok {
		cb = h.Codebook()
	}

	if err := p.emit(ctx, res, scored, cb); err != nil {
		return res, err
	}

	report := runmodel.NewReport(runID, runmodel.Params{
		Model:           p.modelName,
		AnomalyFraction: params.AnomalyFraction,
		Compression:     params.Compression,
	}, threshold, res.Scored, res.Dropped, anomalies)

	start = time.Now()
	err = p.persist(ctx, runID, cb, report)
	p.observe(ctx, observe.Since(observe.StagePersist, start, 1, err))
	if err != nil {
		return res, fmt.Errorf("persist run: %w", err)
	}

	start = time.Now()
	err = p.notifier.Notify(ctx, report)
	p.observe(ctx, observe.Since(observe.StageNotify, start, len(anomalies), err))
	if err != nil {
		return res, fmt.Errorf("notify: %w", err)
	}
	return res, nil
}

// align cuts data to the reconstruction of a truncating model. Any other
// length disagreement is left for the detector to reject.
func (p *Pipeline) align(data, recon *series.Series) *series.Series {
	t, ok := p.model.(model.Truncating)
	if !ok {
		return data
	}
	n := t.Covered(data.Len())
	if recon.Len() != n || n >= data.Len() {
		return data
	}
	return data.Head(n)
}

func (p *Pipeline) emit(ctx context.Context, res *Result, scored *series.Series, cb *codebook.Codebook) error {
	start := time.Now()
	var emitted int
	put := func(name string, write func(w io.Writer) error) error {
		buf := byteutil.GetBytesBuf()
		defer byteutil.PutBytesBuf(buf)
		if err := write(buf); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := p.sink.Put(ctx, path.Join(res.RunID.String(), name), buf.Bytes()); err != nil {
			return fmt.Errorf("put %s: %w", name, err)
		}
		emitted++
		return nil
	}

	err := func() error {
		if cb != nil {
			if err := put(artifact.CodebookName, func(w io.Writer) error {
				return artifact.WriteCodebook(w, cb)
			}); err != nil {
				return err
			}
		}
		if err := put(artifact.TraceName, func(w io.Writer) error {
			return artifact.WriteTrace(w, scored, res.Reconstruction, res.Clusters)
		}); err != nil {
			return err
		}
		return put(artifact.AnomaliesName, func(w io.Writer) error {
			return artifact.WriteAnomalies(w, res.Anomalies)
		})
	}()
	p.observe(ctx, observe.Since(observe.StageEmit, start, emitted, err))
	if err != nil {
		return fmt.Errorf("emit artifacts: %w", err)
	}
	return nil
}

func (p *Pipeline) persist(ctx context.Context, runID uuid.UUID, cb *codebook.Codebook, report runmodel.Report) error {
	if p.codebooks != nil && cb != nil {
		if err := p.codebooks.Save(ctx, runID, cb); err != nil {
			return fmt.Errorf("save codebook: %w", err)
		}
	}
	if p.runs != nil {
		if err := p.runs.Store(ctx, report); err != nil {
			return fmt.Errorf("store report: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) observe(ctx context.Context, ev observe.Event) {
	ev.RunID = observe.RunIDFromContext(ctx)
	p.hook.Observe(ctx, ev)
}

func lenOf(s *series.Series) int {
	if s == nil {
		return 0
	}
	return s.Len()
}
