// Package model defines how a signal model is fitted and asked for a
// reconstruction of the normal behaviour of a series.
package model

import (
	"context"
	"errors"

	"github.com/go-sod/rad/internal/series"
)

var ErrNotFitted = errors.New("model not fitted")

type ProvideFn func() (Model, error)

// Model learns normal behaviour from one series and reconstructs any other
// series from what it learned. Build must complete before Reconstruct.
type Model interface {
	Build(ctx context.Context, data *series.Series) error
	Reconstruct(ctx context.Context, data *series.Series) (*series.Series, error)
}

// Truncating is implemented by models whose reconstruction of n samples
// covers only the first Covered(n) of them.
type Truncating interface {
	Covered(n int) int
}

// Labeler is implemented by models that can tell which dictionary entry
// produced every sample of the last reconstruction.
type Labeler interface {
	Labels() []int
}
