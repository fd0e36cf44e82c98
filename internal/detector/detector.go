// Package detector scores a series against its reconstruction and flags the
// samples whose residual lies beyond a quantile threshold.
package detector

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-sod/rad/internal/quantile"
	"github.com/go-sod/rad/internal/series"
)

var (
	ErrLengthMismatch = errors.New("reconstruction length does not match data")
	ErrFraction       = errors.New("anomaly fraction must be in (0, 1)")
	ErrCompression    = errors.New("compression must be positive")
	ErrEmpty          = errors.New("nothing to score")
)

// Anomaly is a flagged sample. Error is the residual magnitude, or the signed
// residual under TwoSidedPolicy.
type Anomaly struct {
	Value []float64 `json:"value"`
	Error float64   `json:"error"`
	Index int       `json:"index"`
}

// ErrorFn is the residual of one observed row against its reconstruction.
type ErrorFn func(observed, reconstructed []float64) float64

// EuclideanError is the absolute difference for scalars and the L2 norm of
// the difference for feature vectors.
func EuclideanError(observed, reconstructed []float64) float64 {
	if len(observed) == 1 {
		return math.Abs(observed[0] - reconstructed[0])
	}
	var s float64
	for i := range observed {
		d := observed[i] - reconstructed[i]
		s += d * d
	}
	return math.Sqrt(s)
}

func WithErrorFn(fn ErrorFn) Option {
	return func(d *Detector) {
		d.errFn = fn
	}
}

func WithEstimator(fn quantile.ProvideFn) Option {
	return func(d *Detector) {
		d.estimator = fn
	}
}

func WithPolicy(p Policy) Option {
	return func(d *Detector) {
		d.policy = p
	}
}

type Option func(*Detector)

// Detector is stateless between calls and safe for concurrent use.
type Detector struct {
	errFn     ErrorFn
	estimator quantile.ProvideFn
	policy    Policy
}

func New(opts ...Option) *Detector {
	d := &Detector{
		errFn:     EuclideanError,
		estimator: quantile.NewDigest,
		policy:    FractionPolicy{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect flags samples of data whose residual against reconstructed falls
// beyond the threshold chosen by the policy. Anomalies are ordered by index.
// A fresh estimator of the given compression is used on every call.
func (d *Detector) Detect(data, reconstructed *series.Series, fraction, compression float64) ([]Anomaly, float64, error) {
	if data.Len() != reconstructed.Len() {
		return nil, 0, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, reconstructed.Len(), data.Len())
	}
	if data.Len() == 0 {
		return nil, 0, ErrEmpty
	}
	if data.Dim() != reconstructed.Dim() {
		return nil, 0, fmt.Errorf("%w: %d != %d", series.ErrDimension, reconstructed.Dim(), data.Dim())
	}
	if !(compression > 0) {
		return nil, 0, fmt.Errorf("%w: %v", ErrCompression, compression)
	}
	return d.policy.Score(data, reconstructed, d.errFn, d.estimator(compression), fraction)
}

func copyRow(row []float64) []float64 {
	v := make([]float64, len(row))
	copy(v, row)
	return v
}
