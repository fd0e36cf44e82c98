package kdtree

import (
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/valyala/fastrand"
)

type vec []float64

func (v vec) Dim(idx int) float64 { return v[idx] }
func (v vec) Dimensions() int     { return len(v) }
func (v vec) Points() []float64   { return v }

func euclidean(a, b []float64) (float64, error) {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return math.Sqrt(s), nil
}

func bruteNearest(points []Point, q Point) (Point, float64) {
	var best Point
	bestD := math.MaxFloat64
	for _, p := range points {
		d, _ := euclidean(p.Points(), q.Points())
		if d < bestD {
			best, bestD = p, d
		}
	}
	return best, bestD
}

func TestTree_KNN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		points   []Point
		query    vec
		k        int
		expected []vec
	}{
		{
			name:     "single_nearest",
			points:   []Point{vec{0, 0}, vec{5, 5}, vec{10, 10}},
			query:    vec{6, 6},
			k:        1,
			expected: []vec{{5, 5}},
		},
		{
			name:     "two_nearest_ordered",
			points:   []Point{vec{0, 0}, vec{5, 5}, vec{10, 10}, vec{-3, 1}},
			query:    vec{1, 1},
			k:        2,
			expected: []vec{{0, 0}, {-3, 1}},
		},
		{
			name:     "k_larger_than_tree",
			points:   []Point{vec{1}, vec{2}},
			query:    vec{0},
			k:        5,
			expected: []vec{{1}, {2}},
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			tree := New(euclidean)
			tree.Build(test.points...)
			got, distances, err := tree.KNN(test.query, test.k)
			if err != nil {
				t.Fatalf("knn: %v", err)
			}
			if len(got) != len(test.expected) || len(distances) != len(got) {
				t.Fatalf("knn result, got: %s, expected: %v", spew.Sdump(got), test.expected)
			}
			for i := range got {
				for d := range test.expected[i] {
					if got[i].Dim(d) != test.expected[i][d] {
						t.Errorf("knn result %d, got: %v, expected: %v", i, got[i], test.expected[i])
					}
				}
			}
		})
	}
}

func TestTree_KNNMatchesBruteForce(t *testing.T) {
	t.Parallel()
	var rng fastrand.RNG
	rng.Seed(42)
	random := func() float64 { return float64(rng.Uint32n(10000))/100 - 50 }

	points := make([]Point, 500)
	for i := range points {
		points[i] = vec{random(), random(), random(), random()}
	}
	tree := New(euclidean)
	tree.Build(append([]Point(nil), points...)...)

	for i := 0; i < 200; i++ {
		q := vec{random(), random(), random(), random()}
		got, distances, err := tree.KNN(q, 1)
		if err != nil {
			t.Fatalf("knn: %v", err)
		}
		_, expected := bruteNearest(points, q)
		if distances[0] != expected {
			t.Errorf("nearest distance for %v, got: %v (%v), expected: %v", q, distances[0], got[0], expected)
		}
	}
}

func TestTree_InsertRange(t *testing.T) {
	t.Parallel()
	tree := New(euclidean)
	if _, _, err := tree.KNN(vec{0}, 1); err == nil {
		t.Errorf("knn on empty tree must fail")
	}
	for _, p := range []vec{{3, 3}, {1, 1}, {2, 5}, {4, 0}} {
		tree.Insert(p)
	}
	tree.Balance()
	if tree.Len() != 4 || len(tree.Points()) != 4 {
		t.Errorf("tree size, got: %d/%d, expected: 4", tree.Len(), len(tree.Points()))
	}
	found := tree.RangeSearch([]Range{{Min: 0, Max: 3}, {Min: 0, Max: 3}})
	if len(found) != 2 {
		t.Errorf("range search, got: %s, expected two points", spew.Sdump(found))
	}
}
