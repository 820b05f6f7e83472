package grid

// QueryRect collects the IDs of tracked objects whose cells overlap r and
// returns them with the number of non-empty buckets visited.
//
// With exact set, each candidate is filtered by an open-interval AABB
// overlap test against its last known rect. Without it, every member of
// every covered bucket is returned as-is: faster, but over-approximate, and
// an object spanning several covered cells is returned once per cell.
func (g *Grid) QueryRect(r Rect, exact bool) ([]uint32, int) {
	var result []uint32

	visited := g.walkBuckets(r, func(id uint32) bool {
		if exact && !g.records[id].rect.Overlaps(r) {
			return false
		}
		result = append(result, id)
		return false
	})

	instrumentQuery(visited)
	return result, visited
}

// QueryCallback invokes fn for every candidate instead of collecting them,
// with the same exact-test semantics as QueryRect. Traversal stops the
// moment fn returns true, and QueryCallback reports whether it did.
//
// fn must not add or remove objects: mutating the grid mid-traversal is
// undefined.
func (g *Grid) QueryCallback(r Rect, fn func(id uint32) bool, exact bool) (bool, int) {
	stopped := false

	visited := g.walkBuckets(r, func(id uint32) bool {
		if exact && !g.records[id].rect.Overlaps(r) {
			return false
		}
		if fn(id) {
			stopped = true
			return true
		}
		return false
	})

	instrumentQuery(visited)
	return stopped, visited
}

// walkBuckets feeds every member of every non-empty bucket covered by r to
// visit, stopping early when visit returns true. It returns the number of
// non-empty buckets reached.
func (g *Grid) walkBuckets(r Rect, visit func(id uint32) bool) int {
	span := g.ComputeBounds(r)
	visited := 0

	for y := span.YStart; y <= span.YEnd; y++ {
		for x := span.XStart; x <= span.XEnd; x++ {
			bucket, ok := g.buckets[CellKey{X: x, Y: y}]
			if !ok {
				continue
			}

			visited++
			for _, id := range bucket {
				if visit(id) {
					return visited
				}
			}
		}
	}

	return visited
}
