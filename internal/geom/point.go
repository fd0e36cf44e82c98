package geom

import (
	"math"
)

// Point is a fixed-length vector: a window, a codeword or a multi-feature sample.
type Point []float64

func NewPoint(vec []float64) Point {
	return vec
}

func (v Point) Dimensions() int {
	return len(v)
}

func (v Point) Dim(idx int) float64 {
	return v[idx]
}

func (v Point) Points() []float64 {
	return v
}

func (v Point) Copy() Point {
	var v1 = make(Point, len(v))
	copy(v1, v)
	return v1
}

func (v Point) Scale(value float64) {
	for i := range v {
		v[i] *= value
	}
}

// Magnitude is the L2 norm.
func (v Point) Magnitude() float64 {
	var s float64
	for i := range v {
		s += v[i] * v[i]
	}
	return math.Sqrt(s)
}

// Normalize scales v to unit L2 norm in place and returns the original norm.
// A zero vector is left untouched and 0 is returned.
func (v Point) Normalize() float64 {
	norm := v.Magnitude()
	if norm == 0 {
		return 0
	}
	v.Scale(1 / norm)
	return norm
}

// Mul multiplies v by w element-wise in place.
func (v Point) Mul(w Point) error {
	if len(v) != len(w) {
		return ErrDimNotEqual
	}
	for i := range v {
		v[i] *= w[i]
	}
	return nil
}

// Add adds w to v element-wise in place.
func (v Point) Add(w Point) error {
	if len(v) != len(w) {
		return ErrDimNotEqual
	}
	for i := range v {
		v[i] += w[i]
	}
	return nil
}

// Sub returns v - w as a new point.
func (v Point) Sub(w Point) (Point, error) {
	if len(v) != len(w) {
		return nil, ErrDimNotEqual
	}
	d := make(Point, len(v))
	for i := range v {
		d[i] = v[i] - w[i]
	}
	return d, nil
}

func (v Point) Zero() {
	for i := range v {
		v[i] = 0.0
	}
}

func (v Point) Sum() float64 {
	var s float64
	for i := range v {
		s += v[i]
	}
	return s
}

func (v Point) SizeEqual(vec Point) bool {
	return len(v) == len(vec)
}

func (v Point) Equal(vec Point) bool {
	if len(v) != len(vec) {
		return false
	}
	for i, value := range v {
		if vec[i] != value {
			return false
		}
	}
	return true
}
