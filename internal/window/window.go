// Package window chops signals into tapered windows and puts them back
// together by overlap-add.
package window

import (
	"errors"
	"fmt"

	"github.com/go-sod/rad/internal/geom"
)

var (
	ErrWindowSize   = errors.New("window size must be positive")
	ErrOddWindow    = errors.New("overlap-add needs an even window size")
	ErrStep         = errors.New("window step must be positive")
	ErrShortSeries  = errors.New("series is shorter than one window")
	ErrUnknownTaper = errors.New("unknown taper type")
)

// Window is a tapered excerpt of a series. ID keeps the provenance of the
// window after clustering and Scale holds the norm removed by Normalize.
type Window struct {
	Offset int
	ID     int
	Weight float64
	Values geom.Point
	Scale  float64
}

// Normalize scales the window to unit norm, keeping the factor in Scale.
func (w *Window) Normalize() {
	w.Scale = w.Values.Normalize()
}

type Slicer struct {
	taper Taper
	step  int
}

func NewSlicer(taper Taper, step int) (*Slicer, error) {
	if len(taper) == 0 {
		return nil, ErrWindowSize
	}
	if step < 1 {
		return nil, ErrStep
	}
	return &Slicer{taper: taper, step: step}, nil
}

// Count is the number of full windows at stride step in n samples.
func (s *Slicer) Count(n int) int {
	if n < len(s.taper) {
		return 0
	}
	return (n-len(s.taper))/s.step + 1
}

// Slice cuts at most limit windows starting at multiples of step. A limit
// of zero or less takes every full window.
func (s *Slicer) Slice(data []float64, limit int) ([]Window, error) {
	count := s.Count(len(data))
	if count == 0 {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortSeries, len(data), len(s.taper))
	}
	if limit > 0 && limit < count {
		count = limit
	}
	windows := make([]Window, count)
	for i := range windows {
		offset := i * s.step
		windows[i] = Window{
			Offset: offset,
			ID:     i,
			Weight: 1,
			Values: extract(s.taper, data, offset),
		}
	}
	return windows, nil
}

func extract(taper Taper, data []float64, offset int) geom.Point {
	p := make(geom.Point, len(taper))
	for i := range p {
		p[i] = data[offset+i] * taper[i]
	}
	return p
}
