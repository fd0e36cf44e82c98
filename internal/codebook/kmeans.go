package codebook

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/go-sod/rad/internal/geom"
	"github.com/valyala/fastrand"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultSeed         uint32 = 1
	DefaultTrimFraction        = 0.9

	chunkSize = 1024
)

func WithSeed(seed uint32) Option {
	return func(k *KMeans) {
		k.seed = seed
	}
}

// WithTrimFraction limits every centroid update to the points closer than
// fraction * (distance to the nearest other centroid). Zero disables trimming.
func WithTrimFraction(fraction float64) Option {
	return func(k *KMeans) {
		k.trimFraction = fraction
	}
}

func WithDistance(fn geom.DistanceFn) Option {
	return func(k *KMeans) {
		k.distFn = fn
	}
}

func WithWorkers(n int) Option {
	return func(k *KMeans) {
		if n > 0 {
			k.workers = n
		}
	}
}

type Option func(*KMeans)

// KMeans is a ball k-means clusterer with k-means++ seeding. The result is
// deterministic for a given seed regardless of the number of workers.
type KMeans struct {
	seed         uint32
	trimFraction float64
	distFn       geom.DistanceFn
	workers      int
}

func NewKMeans(opts ...Option) *KMeans {
	k := &KMeans{
		seed:         DefaultSeed,
		trimFraction: DefaultTrimFraction,
		distFn:       geom.EuclideanDistance,
		workers:      runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

func (km *KMeans) Cluster(ctx context.Context, points []geom.Point, k, iterations int) (*Codebook, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if k < 1 {
		return nil, ErrClusters
	}
	if iterations < 0 {
		return nil, fmt.Errorf("negative iterations: %d", iterations)
	}
	if err := sameDims(points); err != nil {
		return nil, err
	}

	centroids, err := km.seedCentroids(ctx, points, k)
	if err != nil {
		return nil, fmt.Errorf("seed centroids: %w", err)
	}

	assigned := make([]int, len(points))
	distances := make([]float64, len(points))
	for it := 0; it < iterations; it++ {
		if err := km.assign(ctx, points, centroids, assigned, distances); err != nil {
			return nil, fmt.Errorf("assign iteration %d: %w", it, err)
		}
		radius, err := km.radius(centroids)
		if err != nil {
			return nil, err
		}
		if !update(points, centroids, assigned, distances, radius) {
			break
		}
	}

	return &Codebook{Centroids: centroids}, nil
}

// seedCentroids picks k initial centroids with D^2 weighting.
func (km *KMeans) seedCentroids(ctx context.Context, points []geom.Point, k int) ([]geom.Point, error) {
	var rng fastrand.RNG
	rng.Seed(km.seed)

	n := len(points)
	centroids := make([]geom.Point, 0, k)
	centroids = append(centroids, points[rng.Uint32n(uint32(n))].Copy())

	nearest := make([]float64, n)
	for i := range nearest {
		nearest[i] = math.MaxFloat64
	}

	for len(centroids) < k {
		last := centroids[len(centroids)-1]
		if err := km.forChunks(ctx, n, func(lo, hi int) error {
			for i := lo; i < hi; i++ {
				d, err := km.distFn(points[i], last)
				if err != nil {
					return err
				}
				if d*d < nearest[i] {
					nearest[i] = d * d
				}
			}
			return nil
		}); err != nil {
			return nil, err
		}

		var total float64
		for _, d := range nearest {
			total += d
		}

		var pick int
		if total == 0 {
			// fewer distinct points than k, duplicates are kept
			pick = int(rng.Uint32n(uint32(n)))
		} else {
			target := uniform(&rng) * total
			pick = n - 1
			var acc float64
			for i, d := range nearest {
				acc += d
				if acc > target {
					pick = i
					break
				}
			}
		}
		centroids = append(centroids, points[pick].Copy())
	}
	return centroids, nil
}

func (km *KMeans) assign(ctx context.Context, points, centroids []geom.Point, assigned []int, distances []float64) error {
	return km.forChunks(ctx, len(points), func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			best, bestD := 0, math.MaxFloat64
			for c := range centroids {
				d, err := km.distFn(points[i], centroids[c])
				if err != nil {
					return err
				}
				if d < bestD {
					best, bestD = c, d
				}
			}
			assigned[i] = best
			distances[i] = bestD
		}
		return nil
	})
}

// radius is the trimming ball around each centroid.
func (km *KMeans) radius(centroids []geom.Point) ([]float64, error) {
	radius := make([]float64, len(centroids))
	for i := range radius {
		radius[i] = math.Inf(1)
	}
	if km.trimFraction <= 0 {
		return radius, nil
	}
	for i := range centroids {
		for j := range centroids {
			if i == j {
				continue
			}
			d, err := km.distFn(centroids[i], centroids[j])
			if err != nil {
				return nil, err
			}
			if d == 0 {
				// a duplicate centroid must not starve its twin
				continue
			}
			if r := km.trimFraction * d; r < radius[i] {
				radius[i] = r
			}
		}
	}
	return radius, nil
}

// update moves every centroid to the mean of its trimmed members and reports
// whether any centroid moved.
func update(points, centroids []geom.Point, assigned []int, distances []float64, radius []float64) bool {
	dim := centroids[0].Dimensions()
	sums := make([]geom.Point, len(centroids))
	counts := make([]int, len(centroids))
	for i := range sums {
		sums[i] = make(geom.Point, dim)
	}
	for i, c := range assigned {
		if distances[i] >= radius[c] {
			continue
		}
		_ = sums[c].Add(points[i])
		counts[c]++
	}

	moved := false
	for c := range centroids {
		if counts[c] == 0 {
			continue
		}
		sums[c].Scale(1 / float64(counts[c]))
		if !sums[c].Equal(centroids[c]) {
			centroids[c] = sums[c]
			moved = true
		}
	}
	return moved
}

func (km *KMeans) forChunks(ctx context.Context, n int, fn func(lo, hi int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(km.workers)
	for lo := 0; lo < n; lo += chunkSize {
		lo, hi := lo, lo+chunkSize
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(lo, hi)
		})
	}
	return g.Wait()
}

func uniform(rng *fastrand.RNG) float64 {
	return float64(rng.Uint32()) / (1 << 32)
}
