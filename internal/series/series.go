// Package series holds the time series representation shared by models and detectors.
package series

import (
	"errors"
	"fmt"
)

var ErrDimension = errors.New("invalid series dimension")

// Series is an ordered sequence of samples, each a scalar (dim 1) or a fixed
// dimension feature vector, stored row-major. A Series is never mutated once
// built; Row returns views that callers must not write to.
type Series struct {
	dim    int
	values []float64
}

// New builds a series of len(values)/dim samples.
func New(dim int, values []float64) (*Series, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: %d", ErrDimension, dim)
	}
	if len(values)%dim != 0 {
		return nil, fmt.Errorf("%w: %d values do not split into rows of %d", ErrDimension, len(values), dim)
	}
	return &Series{dim: dim, values: values}, nil
}

// FromScalars builds a scalar series.
func FromScalars(values []float64) *Series {
	return &Series{dim: 1, values: values}
}

// Len is the number of samples.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.values) / s.dim
}

func (s *Series) Dim() int {
	return s.dim
}

func (s *Series) Row(i int) []float64 {
	return s.values[i*s.dim : (i+1)*s.dim : (i+1)*s.dim]
}

// Scalar returns the first feature of sample i.
func (s *Series) Scalar(i int) float64 {
	return s.values[i*s.dim]
}

// Values returns the row-major backing slice.
func (s *Series) Values() []float64 {
	return s.values
}

// Column copies feature c of every sample.
func (s *Series) Column(c int) []float64 {
	col := make([]float64, s.Len())
	for i := range col {
		col[i] = s.values[i*s.dim+c]
	}
	return col
}

// Head returns the first n samples, sharing storage.
func (s *Series) Head(n int) *Series {
	if n > s.Len() {
		n = s.Len()
	}
	return &Series{dim: s.dim, values: s.values[: n*s.dim : n*s.dim]}
}

// Copy returns a deep copy.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.values))
	copy(values, s.values)
	return &Series{dim: s.dim, values: values}
}
