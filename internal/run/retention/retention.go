// Package retention keeps the run store bounded: it deletes reports older
// than a maximum age and the oldest reports beyond a maximum count, together
// with their codebooks.
package retention

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-sod/rad/internal/logging"
	rundb "github.com/go-sod/rad/internal/run/database"
	"github.com/go-sod/rad/internal/run/model"
	"github.com/google/uuid"
)

var ErrInterval = errors.New("retention interval must be positive")

type Config struct {
	MaxRuns  int           `envconfig:"RAD_RETENTION_MAX_RUNS" default:"0" yaml:"max_runs" toml:"max_runs"`
	MaxAge   time.Duration `envconfig:"RAD_RETENTION_MAX_AGE" default:"0" yaml:"max_age" toml:"max_age"`
	Interval time.Duration `envconfig:"RAD_RETENTION_INTERVAL" default:"1m" yaml:"interval" toml:"interval"`
}

// Enabled reports whether any limit is set.
func (c Config) Enabled() bool {
	return c.MaxRuns > 0 || c.MaxAge > 0
}

type ReportStore interface {
	Keys() ([]uuid.UUID, error)
	FindAll(ctx context.Context, filter rundb.FilterFn) ([]model.Report, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CodebookStore interface {
	Keys() ([]uuid.UUID, error)
	Delete(ctx context.Context, runID uuid.UUID) error
}

func WithMaxRuns(n int) Option {
	return func(j *Janitor) {
		j.maxRuns = n
	}
}

func WithMaxAge(d time.Duration) Option {
	return func(j *Janitor) {
		j.maxAge = d
	}
}

func WithInterval(d time.Duration) Option {
	return func(j *Janitor) {
		j.interval = d
	}
}

// WithCodebooks deletes the codebook of every deleted run and codebooks
// left without a run for two consecutive sweeps.
func WithCodebooks(s CodebookStore) Option {
	return func(j *Janitor) {
		j.codebooks = s
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(j *Janitor) {
		j.now = now
	}
}

type Option func(*Janitor)

type Janitor struct {
	runs      ReportStore
	codebooks CodebookStore
	maxRuns   int
	maxAge    time.Duration
	interval  time.Duration
	now       func() time.Time

	// orphans are codebooks without a run seen by the previous sweep.
	orphans map[uuid.UUID]struct{}
}

func New(runs ReportStore, opts ...Option) (*Janitor, error) {
	j := &Janitor{
		runs:     runs,
		interval: time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.interval <= 0 {
		return nil, fmt.Errorf("interval %s: %w", j.interval, ErrInterval)
	}
	return j, nil
}

// Sweep deletes outdated runs first, then the oldest runs above the count
// limit, then orphaned codebooks. It returns the number of deleted runs.
// Sweep is not safe for concurrent use.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	var deleted int
	if j.maxAge > 0 {
		cutoff := j.now().Add(-j.maxAge)
		outdated, err := j.runs.FindAll(ctx, func(r model.Report) bool {
			return r.CreatedAt.Before(cutoff)
		})
		if err != nil {
			return deleted, fmt.Errorf("unable find outdated runs: %w", err)
		}
		if err := j.deleteMany(ctx, outdated); err != nil {
			return deleted, err
		}
		deleted += len(outdated)
	}

	if j.maxRuns > 0 {
		keys, err := j.runs.Keys()
		if err != nil {
			return deleted, fmt.Errorf("unable list runs: %w", err)
		}
		if len(keys) > j.maxRuns {
			reports, err := j.runs.FindAll(ctx, nil)
			if err != nil {
				return deleted, fmt.Errorf("unable find runs: %w", err)
			}
			sort.Slice(reports, func(a, b int) bool {
				return reports[a].CreatedAt.Before(reports[b].CreatedAt)
			})
			oversize := reports[:len(reports)-j.maxRuns]
			if err := j.deleteMany(ctx, oversize); err != nil {
				return deleted, err
			}
			deleted += len(oversize)
		}
	}

	if j.codebooks != nil {
		if err := j.sweepOrphans(ctx); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// sweepOrphans deletes codebooks whose run was missing at this and at the
// previous sweep. A codebook is saved before its report, so a single miss
// may be a run still being persisted.
func (j *Janitor) sweepOrphans(ctx context.Context) error {
	runKeys, err := j.runs.Keys()
	if err != nil {
		return fmt.Errorf("unable list runs: %w", err)
	}
	live := make(map[uuid.UUID]struct{}, len(runKeys))
	for _, id := range runKeys {
		live[id] = struct{}{}
	}

	codebookKeys, err := j.codebooks.Keys()
	if err != nil {
		return fmt.Errorf("unable list codebooks: %w", err)
	}
	pending := make(map[uuid.UUID]struct{})
	for _, id := range codebookKeys {
		if _, ok := live[id]; ok {
			continue
		}
		if _, ok := j.orphans[id]; !ok {
			pending[id] = struct{}{}
			continue
		}
		if err := j.codebooks.Delete(ctx, id); err != nil {
			return fmt.Errorf("unable delete orphaned codebook %s: %w", id, err)
		}
	}
	j.orphans = pending
	return nil
}

func (j *Janitor) deleteMany(ctx context.Context, reports []model.Report) error {
	for _, r := range reports {
		if err := j.runs.Delete(ctx, r.ID); err != nil {
			return fmt.Errorf("unable delete run %s: %w", r.ID, err)
		}
		if j.codebooks != nil {
			if err := j.codebooks.Delete(ctx, r.ID); err != nil {
				return fmt.Errorf("unable delete codebook of run %s: %w", r.ID, err)
			}
		}
	}
	return nil
}

// Run sweeps every interval until ctx is done. Sweep errors are logged.
func (j *Janitor) Run(ctx context.Context) {
	logger := logging.FromContext(ctx)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			n, err := j.Sweep(ctx)
			if err != nil {
				logger.Errorf("unable sweep runs: %v", err)
				continue
			}
			if n > 0 {
				logger.Debugf("deleted %d runs", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
