/*
 * Copyright 2020 Dennis Kuhnert
 * Copyright 2020 Ivanov Nikita
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

// Package kdtree is a k-dimensional tree with nearest neighbour and range queries.
package kdtree

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-sod/rad/pkg/container/pqueue"
)

var ErrEmpty = errors.New("tree is empty or k is 0")

type Point interface {
	Dim(idx int) float64
	Dimensions() int
	Points() []float64
}

// DistanceFn must be a metric whose value is never smaller than the
// absolute difference along any single axis, otherwise pruning is unsound.
type DistanceFn func(vec, vec1 []float64) (float64, error)

func New(distFn DistanceFn) *Tree {
	return &Tree{distFn: distFn}
}

type Tree struct {
	root   *node
	len    int
	distFn DistanceFn
}

func (t *Tree) RangeSearch(r []Range) []Point {
	if t.root == nil {
		return []Point{}
	}
	return t.root.RangeSearch(r, 0)
}

// Build replaces the tree content with a balanced tree over points.
// The slice is reordered in place.
func (t *Tree) Build(points ...Point) {
	t.len = len(points)
	t.root = buildTreeRecursive(points, 0)
}

func (t *Tree) Len() int {
	return t.len
}

func (t *Tree) Insert(p Point) {
	if t.root == nil {
		t.root = &node{Key: p}
	} else {
		t.root.Insert(p, 0)
	}
	t.len++
}

func (t *Tree) Balance() {
	t.root = buildTreeRecursive(t.Points(), 0)
}

func (t *Tree) Points() []Point {
	if t.root == nil {
		return []Point{}
	}
	return t.root.Points()
}

// KNN returns up to k points nearest to p ordered by increasing distance,
// together with their distances.
func (t *Tree) KNN(p Point, k int) ([]Point, []float64, error) {
	if t.root == nil || k <= 0 {
		return nil, nil, ErrEmpty
	}

	queue := pqueue.New(pqueue.WithCap[*node](uint(k)))
	if err := t.knn(p, k, t.root, 0, queue); err != nil {
		return nil, nil, err
	}

	points := make([]Point, queue.Len())
	distances := make([]float64, queue.Len())
	for i := range points {
		n, d := queue.Seek(i)
		points[i] = n.Key
		distances[i] = d
	}

	return points, distances, nil
}

func (t *Tree) knn(p Point, k int, first *node, axis int, queue *pqueue.Queue[*node]) error {
	if k == 0 || first == nil {
		return nil
	}

	var path []*node
	current := first
	dims := p.Dimensions()

	for current != nil {
		path = append(path, current)
		if p.Dim(axis) < current.Key.Dim(axis) {
			current = current.Left
		} else {
			current = current.Right
		}
		axis = (axis + 1) % dims
	}

	axis = (axis - 1 + dims) % dims
	for path, current = popLast(path); current != nil; path, current = popLast(path) {
		distance, err := t.distFn(p.Points(), current.Key.Points())
		if err != nil {
			return fmt.Errorf("compute knn: %w", err)
		}
		checked := kthOrLastDistance(queue, k-1)
		if distance < checked {
			queue.Push(current, distance)
			checked = kthOrLastDistance(queue, k-1)
		}

		if axisDistance(p, current.Key, axis) < checked {
			var next *node
			if p.Dim(axis) < current.Key.Dim(axis) {
				next = current.Right
			} else {
				next = current.Left
			}
			if err := t.knn(p, k, next, (axis+1)%dims, queue); err != nil {
				return err
			}
		}
		axis = (axis - 1 + dims) % dims
	}
	return nil
}

type byAxis struct {
	axis   int
	points []Point
}

func (b *byAxis) Len() int {
	return len(b.points)
}

func (b *byAxis) Less(i, j int) bool {
	return b.points[i].Dim(b.axis) < b.points[j].Dim(b.axis)
}

func (b *byAxis) Swap(i, j int) {
	b.points[i], b.points[j] = b.points[j], b.points[i]
}

func buildTreeRecursive(points []Point, axis int) *node {
	if len(points) == 0 {
		return nil
	}
	if len(points) == 1 {
		return &node{Key: points[0]}
	}

	sort.Stable(&byAxis{axis: axis, points: points})
	mid := len(points) / 2
	// equal keys must go right to match Insert and the search descent
	for mid > 0 && points[mid-1].Dim(axis) == points[mid].Dim(axis) {
		mid--
	}
	root := points[mid]
	next := (axis + 1) % root.Dimensions()
	return &node{
		Key:   root,
		Left:  buildTreeRecursive(points[:mid], next),
		Right: buildTreeRecursive(points[mid+1:], next),
	}
}

func axisDistance(vec, vec1 Point, axis int) float64 {
	return math.Abs(vec1.Dim(axis) - vec.Dim(axis))
}

func popLast(arr []*node) ([]*node, *node) {
	l := len(arr) - 1
	if l < 0 {
		return arr, nil
	}
	return arr[:l], arr[l]
}

func kthOrLastDistance(queue *pqueue.Queue[*node], i int) float64 {
	if queue.Len() <= i {
		return math.MaxFloat64
	}
	_, distance := queue.Seek(i)
	return distance
}
