// Package identity reconstructs every series as itself. It is the baseline
// against which the scorer must flag nothing.
package identity

import (
	"context"
	"sync/atomic"

	"github.com/go-sod/rad/internal/model"
	"github.com/go-sod/rad/internal/series"
)

var _ model.Model = (*Model)(nil)

func New() *Model {
	return &Model{}
}

type Model struct {
	fitted atomic.Bool
}

func (m *Model) Build(_ context.Context, _ *series.Series) error {
	m.fitted.Store(true)
	return nil
}

func (m *Model) Reconstruct(_ context.Context, data *series.Series) (*series.Series, error) {
	if !m.fitted.Load() {
		return nil, model.ErrNotFitted
	}
	return data.Copy(), nil
}
