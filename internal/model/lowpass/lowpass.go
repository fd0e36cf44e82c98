// Package lowpass reconstructs a series by a centered moving average of every
// feature.
package lowpass

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/series"
)

const DefaultWidth = 5

var _ model.Model = (*Model)(nil)

// WithWidth sets the number of samples averaged; even widths are rounded up.
func WithWidth(n int) Option {
	return func(m *Model) {
		m.width = n
	}
}

type Option func(*Model)

func New(opts ...Option) (*Model, error) {
	m := &Model{width: DefaultWidth}
	for _, opt := range opts {
		opt(m)
	}
	if m.width < 1 {
		return nil, fmt.Errorf("moving average width must be positive: %d", m.width)
	}
	return m, nil
}

type Model struct {
	width int

	mtx sync.RWMutex
	dim int
}

func (m *Model) Build(_ context.Context, data *series.Series) error {
	if data.Len() == 0 {
		return fmt.Errorf("fit on empty series")
	}
	m.mtx.Lock()
	m.dim = data.Dim()
	m.mtx.Unlock()
	return nil
}

// Reconstruct averages every sample with width/2 neighbours on each side;
// the window shrinks at both ends of the series.
func (m *Model) Reconstruct(ctx context.Context, data *series.Series) (*series.Series, error) {
	m.mtx.RLock()
	dim := m.dim
	m.mtx.RUnlock()
	if dim == 0 {
		return nil, model.ErrNotFitted
	}
	if data.Dim() != dim {
		return nil, fmt.Errorf("%w: fitted on %d features, got %d", series.ErrDimension, dim, data.Dim())
	}

	n := data.Len()
	half := m.width / 2
	out := make([]float64, n*dim)
	for c := 0; c < dim; c++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		col := data.Column(c)
		prefix := make([]float64, n+1)
		for i, v := range col {
			prefix[i+1] = prefix[i] + v
		}
		for i := 0; i < n; i++ {
			lo, hi := i-half, i+half+1
			if lo < 0 {
				lo = 0
			}
			if hi > n {
				hi = n
			}
			out[i*dim+c] = (prefix[hi] - prefix[lo]) / float64(hi-lo)
		}
	}
	return series.New(dim, out)
}
