package window

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-sod/rad/internal/geom"
	"golang.org/x/sync/errgroup"
)

// LookupFn maps a unit-norm window to a codeword and its index. It must be
// safe for concurrent use.
type LookupFn func(query geom.Point) (geom.Point, int, error)

type ResynthesizerOption func(*Resynthesizer)

// WithWorkers bounds the number of goroutines running lookups.
func WithWorkers(n int) ResynthesizerOption {
	return func(r *Resynthesizer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// Resynthesizer rebuilds a signal from codewords at a stride of half a window.
type Resynthesizer struct {
	taper   Taper
	half    int
	workers int
}

func NewResynthesizer(taper Taper, opts ...ResynthesizerOption) (*Resynthesizer, error) {
	if len(taper) == 0 {
		return nil, ErrWindowSize
	}
	if len(taper)%2 != 0 {
		return nil, fmt.Errorf("%w: %d", ErrOddWindow, len(taper))
	}
	r := &Resynthesizer{taper: taper, half: len(taper) / 2, workers: runtime.NumCPU()}
	for _, f := range opts {
		f(r)
	}
	return r, nil
}

// Covered is the number of output samples for an input of n samples: steps
// start at multiples of half a window while a full window fits strictly
// inside the input, and the trailing partial window is dropped.
func (r *Resynthesizer) Covered(n int) int {
	size := 2 * r.half
	if n <= size {
		return 0
	}
	steps := (n - size + r.half - 1) / r.half
	return steps * r.half
}

type step struct {
	codeword geom.Point
	index    int
	scale    float64
}

// Resynthesize replaces every half-overlapping window of data by its nearest
// codeword rescaled to the window norm. Output sample i+j of the step at i is
// the second half of the previous codeword plus the first half of the
// current one. labels holds the current codeword index of every output
// sample, or -1 where the window was all zeros.
func (r *Resynthesizer) Resynthesize(ctx context.Context, data []float64, lookup LookupFn) ([]float64, []int, error) {
	covered := r.Covered(len(data))
	if covered == 0 {
		return nil, nil, fmt.Errorf("%w: %d <= %d", ErrShortSeries, len(data), len(r.taper))
	}
	steps := make([]step, covered/r.half)

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(r.workers)
	chunk := (len(steps) + r.workers - 1) / r.workers
	for lo := 0; lo < len(steps); lo += chunk {
		lo, hi := lo, lo+chunk
		if hi > len(steps) {
			hi = len(steps)
		}
		grp.Go(func() error {
			for k := lo; k < hi; k++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				row := extract(r.taper, data, k*r.half)
				scale := row.Normalize()
				if scale == 0 {
					steps[k] = step{index: -1}
					continue
				}
				codeword, idx, err := lookup(row)
				if err != nil {
					return fmt.Errorf("lookup window at %d: %w", k*r.half, err)
				}
				if len(codeword) != len(r.taper) {
					return fmt.Errorf("lookup window at %d: %w", k*r.half, geom.ErrDimNotEqual)
				}
				steps[k] = step{codeword: codeword, index: idx, scale: scale}
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}

	out := make([]float64, covered)
	labels := make([]int, covered)
	var previous step
	for k, current := range steps {
		i := k * r.half
		for j := 0; j < r.half; j++ {
			var v float64
			if previous.codeword != nil {
				v += previous.scale * previous.codeword[r.half+j]
			}
			if current.codeword != nil {
				v += current.scale * current.codeword[j]
			}
			out[i+j] = v
			labels[i+j] = current.index
		}
		previous = current
	}
	return out, labels, nil
}
