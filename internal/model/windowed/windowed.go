// Package windowed models a scalar signal as a dictionary of window shapes.
// Fitting clusters unit-norm tapered windows into a codebook; reconstruction
// replaces every half-overlapping window by its nearest codeword scaled back
// to the window norm and blends neighbours by overlap-add.
package windowed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-sod/rad/internal/codebook"
	"github.com/go-sod/rad/internal/geom"
	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/observe"
	"github.com/go-sod/rad/internal/series"
	"github.com/go-sod/rad/internal/window"
)

const (
	DefaultWindow     = 32
	DefaultStep       = 2
	DefaultSamples    = 200000
	DefaultClusters   = 400
	DefaultIterations = 10
)

var (
	ErrNotScalar = errors.New("windowed model needs a scalar series")
	ErrFlat      = errors.New("every training window is zero")
)

var (
	_ model.Model      = (*Model)(nil)
	_ model.Truncating = (*Model)(nil)
	_ model.Labeler    = (*Model)(nil)
)

func WithTaper(taper window.Taper) Option {
	return func(m *Model) {
		m.taper = taper
	}
}

func WithStep(step int) Option {
	return func(m *Model) {
		m.step = step
	}
}

// WithSamples caps the number of training windows; zero or less means all.
func WithSamples(n int) Option {
	return func(m *Model) {
		m.samples = n
	}
}

func WithClusters(k int) Option {
	return func(m *Model) {
		m.clusters = k
	}
}

func WithIterations(n int) Option {
	return func(m *Model) {
		m.iterations = n
	}
}

func WithClusterer(c codebook.Clusterer) Option {
	return func(m *Model) {
		m.clusterer = c
	}
}

func WithSearchAlg(alg codebook.SearchAlg) Option {
	return func(m *Model) {
		m.searchAlg = alg
	}
}

func WithDistance(fn geom.DistanceFn) Option {
	return func(m *Model) {
		m.distFn = fn
	}
}

func WithWorkers(n int) Option {
	return func(m *Model) {
		m.workers = n
	}
}

func WithHook(h observe.Hook) Option {
	return func(m *Model) {
		m.hook = h
	}
}

type Option func(*Model)

type Model struct {
	taper      window.Taper
	step       int
	samples    int
	clusters   int
	iterations int
	clusterer  codebook.Clusterer
	searchAlg  codebook.SearchAlg
	distFn     geom.DistanceFn
	workers    int
	hook       observe.Hook

	slicer  *window.Slicer
	resynth *window.Resynthesizer

	mtx      sync.RWMutex
	cb       *codebook.Codebook
	searcher codebook.Searcher
	labels   []int
}

func New(opts ...Option) (*Model, error) {
	m := &Model{
		taper:      window.Hann(DefaultWindow),
		step:       DefaultStep,
		samples:    DefaultSamples,
		clusters:   DefaultClusters,
		iterations: DefaultIterations,
		searchAlg:  codebook.AlgBrute,
		distFn:     geom.EuclideanDistance,
		hook:       observe.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.clusters < 1 {
		return nil, codebook.ErrClusters
	}
	if m.iterations < 0 {
		return nil, fmt.Errorf("negative iterations: %d", m.iterations)
	}
	if m.clusterer == nil {
		m.clusterer = codebook.NewKMeans(codebook.WithDistance(m.distFn), codebook.WithWorkers(m.workers))
	}

	slicer, err := window.NewSlicer(m.taper, m.step)
	if err != nil {
		return nil, fmt.Errorf("unable create slicer: %w", err)
	}
	resynth, err := window.NewResynthesizer(m.taper, window.WithWorkers(m.workers))
	if err != nil {
		return nil, fmt.Errorf("unable create resynthesizer: %w", err)
	}
	m.slicer, m.resynth = slicer, resynth
	return m, nil
}

// Build learns the codebook from at most the configured number of windows of
// data. Windows with zero norm carry no shape and are left out.
func (m *Model) Build(ctx context.Context, data *series.Series) error {
	if data.Dim() != 1 {
		return ErrNotScalar
	}

	start := time.Now()
	windows, err := m.slicer.Slice(data.Values(), m.samples)
	if err != nil {
		m.hook.Observe(ctx, observe.Since(observe.StageSlice, start, 0, err))
		return fmt.Errorf("slice training windows: %w", err)
	}
	points := make([]geom.Point, 0, len(windows))
	for i := range windows {
		windows[i].Normalize()
		if windows[i].Scale == 0 {
			continue
		}
		points = append(points, windows[i].Values)
	}
	if len(points) == 0 {
		err = ErrFlat
	}
	m.hook.Observe(ctx, observe.Since(observe.StageSlice, start, len(points), err))
	if err != nil {
		return err
	}

	start = time.Now()
	cb, err := m.clusterer.Cluster(ctx, points, m.clusters, m.iterations)
	m.hook.Observe(ctx, observe.Since(observe.StageCluster, start, cb.Len(), err))
	if err != nil {
		return fmt.Errorf("cluster windows: %w", err)
	}
	searcher, err := codebook.NewSearcher(m.searchAlg, cb, m.distFn)
	if err != nil {
		return fmt.Errorf("unable create searcher: %w", err)
	}

	m.mtx.Lock()
	m.cb, m.searcher, m.labels = cb, searcher, nil
	m.mtx.Unlock()
	return nil
}

// Reconstruct returns Covered(data.Len()) samples; the trailing partial
// window is dropped.
func (m *Model) Reconstruct(ctx context.Context, data *series.Series) (*series.Series, error) {
	m.mtx.RLock()
	searcher := m.searcher
	m.mtx.RUnlock()
	if searcher == nil {
		return nil, model.ErrNotFitted
	}
	if data.Dim() != 1 {
		return nil, ErrNotScalar
	}

	out, labels, err := m.resynth.Resynthesize(ctx, data.Values(), func(query geom.Point) (geom.Point, int, error) {
		match, err := searcher.Nearest(query)
		if err != nil {
			return nil, 0, err
		}
		return match.Centroid, match.Index, nil
	})
	if err != nil {
		return nil, fmt.Errorf("resynthesize: %w", err)
	}

	m.mtx.Lock()
	m.labels = labels
	m.mtx.Unlock()
	return series.FromScalars(out), nil
}

func (m *Model) Covered(n int) int {
	return m.resynth.Covered(n)
}

// Labels returns the codeword index of every sample of the last
// reconstruction, -1 for samples rebuilt from silent windows.
func (m *Model) Labels() []int {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.labels
}

// Codebook is nil until Build succeeds.
func (m *Model) Codebook() *codebook.Codebook {
	m.mtx.RLock()
	defer m.mtx.RUnlock()
	return m.cb
}

func (m *Model) WindowSize() int {
	return len(m.taper)
}
