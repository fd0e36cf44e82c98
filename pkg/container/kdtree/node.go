package kdtree

type node struct {
	Key   Point
	Left  *node
	Right *node
}

func (n *node) Points() []Point {
	var points []Point
	if n.Left != nil {
		points = n.Left.Points()
	}
	points = append(points, n.Key)
	if n.Right != nil {
		points = append(points, n.Right.Points()...)
	}
	return points
}

func (n *node) insertLeft(p Point, axis int) {
	if n.Left == nil {
		n.Left = &node{Key: p}
	} else {
		n.Left.Insert(p, (axis+1)%n.Key.Dimensions())
	}
}

func (n *node) insertRight(p Point, axis int) {
	if n.Right == nil {
		n.Right = &node{Key: p}
	} else {
		n.Right.Insert(p, (axis+1)%n.Key.Dimensions())
	}
}

func (n *node) Insert(p Point, axis int) {
	if p.Dim(axis) < n.Key.Dim(axis) {
		n.insertLeft(p, axis)
	} else {
		n.insertRight(p, axis)
	}
}

// Range bounds one axis of an orthogonal range query, both ends inclusive.
type Range struct {
	Min, Max float64
}

func (n *node) RangeSearch(r []Range, axis int) []Point {
	var points []Point

	inside := true
	for dim, limit := range r {
		if limit.Min > n.Key.Dim(dim) || limit.Max < n.Key.Dim(dim) {
			inside = false
			break
		}
	}
	if inside {
		points = append(points, n.Key)
	}

	next := (axis + 1) % n.Key.Dimensions()
	if n.Left != nil && n.Key.Dim(axis) >= r[axis].Min {
		points = append(points, n.Left.RangeSearch(r, next)...)
	}
	if n.Right != nil && n.Key.Dim(axis) <= r[axis].Max {
		points = append(points, n.Right.RangeSearch(r, next)...)
	}

	return points
}
