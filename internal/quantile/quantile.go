// Package quantile estimates quantiles of a stream of residuals.
package quantile

import (
	"math"
	"sort"

	"github.com/influxdata/tdigest"
)

const DefaultCompression = 100

// Estimator accumulates values one at a time and answers quantile queries.
// Implementations are not safe for concurrent use.
type Estimator interface {
	Add(x float64)
	Quantile(q float64) float64
	Count() int
}

type ProvideFn func(compression float64) Estimator

// NewDigest is a t-digest; compression trades memory for tail accuracy.
func NewDigest(compression float64) Estimator {
	if compression <= 0 {
		compression = DefaultCompression
	}
	return &digest{td: tdigest.NewWithCompression(compression)}
}

type digest struct {
	td *tdigest.TDigest
}

func (d *digest) Add(x float64) {
	d.td.Add(x, 1)
}

func (d *digest) Quantile(q float64) float64 {
	return d.td.Quantile(q)
}

func (d *digest) Count() int {
	return int(d.td.Count())
}

// NewExact keeps every value; the compression argument is ignored.
func NewExact(float64) Estimator {
	return &exact{}
}

type exact struct {
	values []float64
	sorted bool
}

func (e *exact) Add(x float64) {
	e.values = append(e.values, x)
	e.sorted = false
}

// Quantile interpolates linearly between order statistics at rank q*(n-1).
func (e *exact) Quantile(q float64) float64 {
	n := len(e.values)
	if n == 0 {
		return math.NaN()
	}
	if !e.sorted {
		sort.Float64s(e.values)
		e.sorted = true
	}
	switch {
	case q <= 0:
		return e.values[0]
	case q >= 1:
		return e.values[n-1]
	}
	rank := q * float64(n-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	if hi >= n {
		return e.values[n-1]
	}
	frac := rank - float64(lo)
	return e.values[lo] + frac*(e.values[hi]-e.values[lo])
}

func (e *exact) Count() int {
	return len(e.values)
}

type EstimatorType string

const (
	EstimatorTypeDigest EstimatorType = "TDIGEST"
	EstimatorTypeExact  EstimatorType = "EXACT"
)

func ProvideFor(t EstimatorType) (ProvideFn, bool) {
	switch t {
	case EstimatorTypeDigest:
		return NewDigest, true
	case EstimatorTypeExact:
		return NewExact, true
	default:
		return nil, false
	}
}
