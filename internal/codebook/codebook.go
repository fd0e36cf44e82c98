// Package codebook learns a small dictionary of representative window shapes
// and answers nearest-codeword queries against it.
package codebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sod/rad/internal/geom"
)

var (
	ErrNoPoints      = errors.New("no points to cluster")
	ErrClusters      = errors.New("number of clusters must be positive")
	ErrEmptyCodebook = errors.New("codebook is empty")
)

// Clusterer reduces a set of equal-length vectors to k centroids.
type Clusterer interface {
	Cluster(ctx context.Context, points []geom.Point, k, iterations int) (*Codebook, error)
}

// Codebook is read-only once built.
type Codebook struct {
	Centroids []geom.Point
}

func New(centroids []geom.Point) (*Codebook, error) {
	if len(centroids) == 0 {
		return nil, ErrEmptyCodebook
	}
	if err := sameDims(centroids); err != nil {
		return nil, err
	}
	return &Codebook{Centroids: centroids}, nil
}

func (c *Codebook) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Centroids)
}

func (c *Codebook) Dim() int {
	if c.Len() == 0 {
		return 0
	}
	return c.Centroids[0].Dimensions()
}

type Match struct {
	Centroid geom.Point
	Index    int
	Distance float64
}

func sameDims(points []geom.Point) error {
	if len(points) == 0 {
		return nil
	}
	dim := points[0].Dimensions()
	for i := range points {
		if points[i].Dimensions() != dim {
			return fmt.Errorf("point %d has %d dimensions, expected %d: %w",
				i, points[i].Dimensions(), dim, geom.ErrDimNotEqual)
		}
	}
	return nil
}
