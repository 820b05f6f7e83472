package grid

// Uniform Grid Spatial Index
//
// A flat, uniformely sub-divided grid mapping integer cell coordinates to
// buckets of object IDs. The particularities are:
//   - the grid has a per-axis cell size that defines how large a cell is. A
//     cell size of 1000 makes each cell hold a 1000x1000 unit subdivision of
//     the world.
//   - buckets are created lazily on first insertion and deleted when drained,
//     so BucketCount only counts occupied cells.
//   - membership is tracked in a side table per object ID: the last cell
//     span, the exact list of occupied keys and the last AABB. Updating an
//     object whose span did not change touches no buckets, which keeps
//     membership churn proportional to objects that crossed a cell boundary.
//
// The grid is single-threaded by contract: one logical thread per instance,
// no internal locking.

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

const (
	// DefaultCellSize is used for any axis configured with a non-positive
	// cell size.
	DefaultCellSize = 1000

	// ErrTypeObjectNotTracked is the error type returned when an operation
	// references an object ID the grid has no record of.
	ErrTypeObjectNotTracked = "object_not_tracked"

	// ErrTypeMembershipCorrupt is the error type returned when an object is
	// missing from a bucket its record claims it occupies. It signals a
	// caller bug and the grid state can no longer be trusted.
	ErrTypeMembershipCorrupt = "membership_corrupt"
)

type record struct {
	span Span
	keys []CellKey
	rect Rect
}

type Grid struct {
	CellWidth  float32
	CellHeight float32

	buckets map[CellKey][]uint32
	records map[uint32]*record

	// mutations counts individual bucket insertions and removals. It backs
	// the span-stability guarantee: two successive updates with the same
	// rect leave it unchanged.
	mutations uint64
}

func NewGrid(cellWidth, cellHeight float32) *Grid {
	if cellWidth <= 0 {
		cellWidth = DefaultCellSize
	}
	if cellHeight <= 0 {
		cellHeight = DefaultCellSize
	}

	return &Grid{
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
		buckets:    make(map[CellKey][]uint32),
		records:    make(map[uint32]*record),
	}
}

// ComputeBounds returns the inclusive cell span covered by r. Start
// coordinates are clamped to 0, end coordinates are not. See Span.
func (g *Grid) ComputeBounds(r Rect) Span {
	span := Span{
		XStart: cellCoord(r.X, g.CellWidth),
		YStart: cellCoord(r.Y, g.CellHeight),
		XEnd:   cellCoord(r.X+r.Width, g.CellWidth),
		YEnd:   cellCoord(r.Y+r.Height, g.CellHeight),
	}

	if span.XStart < 0 {
		span.XStart = 0
	}
	if span.YStart < 0 {
		span.YStart = 0
	}
	return span
}

// Update reconciles the membership of an object against its current AABB.
// The record is created on first call. It reports whether any bucket was
// touched: an unchanged span is a no-op, the dominant case for objects that
// did not cross a cell boundary.
func (g *Grid) Update(id uint32, r Rect) (bool, error) {
	span := g.ComputeBounds(r)

	rec, ok := g.records[id]
	if !ok {
		rec = &record{}
		g.records[id] = rec
		instrumentTrackObject()
	} else if rec.span.Equal(span) {
		rec.rect = r
		return false, nil
	}

	mutated := len(rec.keys) > 0

	if mutated {
		if err := g.removeAll(id, rec); err != nil {
			return false, err
		}
	}

	for y := span.YStart; y <= span.YEnd; y++ {
		for x := span.XStart; x <= span.XEnd; x++ {
			key := CellKey{X: x, Y: y}
			g.insert(id, key)
			rec.keys = append(rec.keys, key)
			mutated = true
		}
	}

	rec.span = span
	rec.rect = r
	return mutated, nil
}

// Remove prunes the object from every bucket it occupies and drops its
// record. Removing an unknown object is a caller bug and fails fast.
func (g *Grid) Remove(id uint32) error {
	rec, ok := g.records[id]
	if !ok {
		return errors.New("object is not tracked").
			WithType(ErrTypeObjectNotTracked).
			WithTag("object_id", id)
	}

	if err := g.removeAll(id, rec); err != nil {
		return err
	}

	delete(g.records, id)
	instrumentUntrackObject()
	return nil
}

// Contains reports whether the grid holds a record for the object.
func (g *Grid) Contains(id uint32) bool {
	_, ok := g.records[id]
	return ok
}

// OccupiedCells returns the number of cells the object currently occupies,
// 0 for untracked objects.
func (g *Grid) OccupiedCells(id uint32) int {
	rec, ok := g.records[id]
	if !ok {
		return 0
	}
	return len(rec.keys)
}

// Bounds returns the last AABB the object was updated with.
func (g *Grid) Bounds(id uint32) (Rect, bool) {
	rec, ok := g.records[id]
	if !ok {
		return Rect{}, false
	}
	return rec.rect, true
}

// Mutations returns the number of bucket insertions and removals performed
// since the grid was created.
func (g *Grid) Mutations() uint64 {
	return g.mutations
}

// insert appends the object to the bucket for key, creating the bucket if
// absent. No duplicate check: the caller guarantees each key is inserted at
// most once per update pass.
func (g *Grid) insert(id uint32, key CellKey) {
	g.buckets[key] = append(g.buckets[key], id)
	g.mutations++
	instrumentBucketMutation()
}

// removeAll removes the object from every bucket listed by its record and
// clears the occupied-key list. A bucket that does not hold the object
// indicates a membership invariant violation.
func (g *Grid) removeAll(id uint32, rec *record) error {
	for _, key := range rec.keys {
		if !g.removeFromBucket(id, key) {
			return errors.New("object is missing from an occupied bucket").
				WithType(ErrTypeMembershipCorrupt).
				WithTag("object_id", id).
				WithTag("cell_x", key.X).
				WithTag("cell_y", key.Y)
		}
	}

	rec.keys = rec.keys[:0]
	return nil
}

func (g *Grid) removeFromBucket(id uint32, key CellKey) bool {
	bucket := g.buckets[key]
	for i := range bucket {
		if bucket[i] != id {
			continue
		}

		bucket[i] = bucket[len(bucket)-1]
		bucket = bucket[:len(bucket)-1]

		if len(bucket) == 0 {
			delete(g.buckets, key)
		} else {
			g.buckets[key] = bucket
		}

		g.mutations++
		instrumentBucketMutation()
		return true
	}
	return false
}
