// Package srvenv holds the components built by setup for one process.
package srvenv

import (
	"context"
	"errors"
	"io"

	"contrib.go.opencensus.io/exporter/prometheus"
	"github.com/go-sod/rad/internal/alert"
	"github.com/go-sod/rad/internal/artifact"
	codebookdb "github.com/go-sod/rad/internal/codebook/database"
	"github.com/go-sod/rad/internal/database"
	"github.com/go-sod/rad/internal/detector"
	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/observe"
	"github.com/go-sod/rad/internal/pipeline"
	rundb "github.com/go-sod/rad/internal/run/database"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{
		hook:     observe.Nop(),
		sink:     artifact.NopSink{},
		notifier: alert.Nop{},
	}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database  *database.DB
	model     model.ProvideFn
	modelName string
	detector  *detector.Detector
	params    pipeline.Params
	sink      artifact.Sink
	notifier  alert.Notifier
	hook      observe.Hook
	exporter  *prometheus.Exporter
	closers   []io.Closer
}

func (s *SrvEnv) ProvideModel() model.ProvideFn {
	return s.model
}

func (s *SrvEnv) ModelName() string {
	return s.modelName
}

func (s *SrvEnv) Detector() *detector.Detector {
	return s.detector
}

// Params are the run parameters used when a request names none.
func (s *SrvEnv) Params() pipeline.Params {
	return s.params
}

func (s *SrvEnv) Sink() artifact.Sink {
	return s.sink
}

func (s *SrvEnv) Notifier() alert.Notifier {
	return s.notifier
}

func (s *SrvEnv) Hook() observe.Hook {
	return s.hook
}

func (s *SrvEnv) Exporter() *prometheus.Exporter {
	return s.exporter
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

// Runs is nil without a database.
func (s *SrvEnv) Runs() *rundb.DB {
	if s.database == nil {
		return nil
	}
	return rundb.New(s.database)
}

// Codebooks is nil without a database.
func (s *SrvEnv) Codebooks() *codebookdb.DB {
	if s.database == nil {
		return nil
	}
	return codebookdb.New(s.database)
}

// PipelineOptions wires every configured component into a pipeline.
func (s *SrvEnv) PipelineOptions() []pipeline.Option {
	opts := []pipeline.Option{
		pipeline.WithHook(s.hook),
		pipeline.WithSink(s.sink),
		pipeline.WithNotifier(s.notifier),
		pipeline.WithModelName(s.modelName),
	}
	if s.database != nil {
		opts = append(opts,
			pipeline.WithCodebookStore(codebookdb.New(s.database)),
			pipeline.WithRunStore(rundb.New(s.database)),
		)
	}
	return opts
}

func WithModel(name string, fn model.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.modelName = name
		s.model = fn
		return s
	}
}

func WithDetector(d *detector.Detector, params pipeline.Params) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.detector = d
		s.params = params
		return s
	}
}

func WithSink(sink artifact.Sink) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.sink = sink
		return s
	}
}

func WithNotifier(n alert.Notifier) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.notifier = n
		return s
	}
}

func WithHook(h observe.Hook) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.hook = h
		return s
	}
}

func WithExporter(e *prometheus.Exporter) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.exporter = e
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

// WithCloser registers a resource released by Close.
func WithCloser(c io.Closer) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.closers = append(s.closers, c)
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.database != nil {
		if err := s.database.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
