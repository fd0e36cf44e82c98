package codebook

import (
	"fmt"

	"github.com/go-sod/rad/internal/geom"
	"github.com/go-sod/rad/pkg/container/kdtree"
	"github.com/go-sod/rad/pkg/container/pqueue"
)

type SearchAlg string

const (
	AlgBrute  SearchAlg = "BRUTE"
	AlgKDTree SearchAlg = "KDTREE"
)

// Searcher finds the codeword closest to a query. Implementations are
// safe for concurrent use once constructed.
type Searcher interface {
	Nearest(query geom.Point) (Match, error)
}

func NewSearcher(alg SearchAlg, cb *Codebook, distFn geom.DistanceFn) (Searcher, error) {
	if cb.Len() == 0 {
		return nil, ErrEmptyCodebook
	}
	switch alg {
	case AlgBrute:
		return &brute{cb: cb, distFn: distFn}, nil
	case AlgKDTree:
		return newKD(cb, distFn), nil
	default:
		return nil, fmt.Errorf("unknown search algorithm: %s", alg)
	}
}

type brute struct {
	cb     *Codebook
	distFn geom.DistanceFn
}

// Nearest returns the lowest index among equally distant centroids.
func (b *brute) Nearest(query geom.Point) (Match, error) {
	pq := pqueue.New(pqueue.WithCap[int](1))
	for i, c := range b.cb.Centroids {
		distance, err := b.distFn(query, c)
		if err != nil {
			return Match{}, fmt.Errorf("unable to compute distance to centroid %d: %w", i, err)
		}
		pq.Push(i, distance)
	}
	idx, distance := pq.Seek(0)
	return Match{Centroid: b.cb.Centroids[idx], Index: idx, Distance: distance}, nil
}

type entry struct {
	geom.Point
	index int
}

type kd struct {
	dim  int
	tree *kdtree.Tree
}

func newKD(cb *Codebook, distFn geom.DistanceFn) *kd {
	points := make([]kdtree.Point, cb.Len())
	for i, c := range cb.Centroids {
		points[i] = entry{Point: c, index: i}
	}
	tree := kdtree.New(func(vec, vec1 []float64) (float64, error) { return distFn(vec, vec1) })
	tree.Build(points...)
	return &kd{dim: cb.Dim(), tree: tree}
}

func (k *kd) Nearest(query geom.Point) (Match, error) {
	if query.Dimensions() != k.dim {
		return Match{}, geom.ErrDimNotEqual
	}
	found, distances, err := k.tree.KNN(query, 1)
	if err != nil {
		return Match{}, fmt.Errorf("kd search: %w", err)
	}
	e := found[0].(entry)
	return Match{Centroid: e.Point, Index: e.index, Distance: distances[0]}, nil
}
