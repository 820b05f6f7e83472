package grid

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
)

// Stats is a read-only snapshot of the grid shape, meant to help callers
// tune the cell size.
type Stats struct {
	TrackedObjects    int     `json:"tracked_objects"`
	BucketCount       int     `json:"bucket_count"`
	AverageBucketSize float64 `json:"average_bucket_size"`
	LargestBucket     int     `json:"largest_bucket"`
	Mutations         uint64  `json:"mutations"`
}

// DebugInfo is a Stats snapshot extended with the per-cell occupancy of the
// cells covered by a rectangle, row by row.
type DebugInfo struct {
	Stats

	CellWidth  float32 `json:"cell_width"`
	CellHeight float32 `json:"cell_height"`
	Span       Span    `json:"span"`
	Occupancy  []int   `json:"occupancy"`
}

func (g *Grid) Stats() Stats {
	return Stats{
		TrackedObjects:    len(g.records),
		BucketCount:       g.BucketCount(),
		AverageBucketSize: g.AverageBucketSize(),
		LargestBucket:     g.LargestBucket(),
		Mutations:         g.mutations,
	}
}

// BucketCount returns the number of occupied cells.
func (g *Grid) BucketCount() int {
	return len(g.buckets)
}

// AverageBucketSize returns the mean population of occupied buckets, 0 for
// an empty grid.
func (g *Grid) AverageBucketSize() float64 {
	if len(g.buckets) == 0 {
		return 0
	}

	total := 0
	for _, bucket := range g.buckets {
		total += len(bucket)
	}
	return (float64)(total) / (float64)(len(g.buckets))
}

// LargestBucket returns the population of the most crowded bucket.
func (g *Grid) LargestBucket() int {
	largest := 0
	for _, bucket := range g.buckets {
		if len(bucket) > largest {
			largest = len(bucket)
		}
	}
	return largest
}

// Sparseness returns the fraction of cells covered by r that are occupied,
// between 0 and 1. An empty span yields 0.
func (g *Grid) Sparseness(r Rect) float64 {
	span := g.ComputeBounds(r)

	cells := span.CellCount()
	if cells == 0 {
		return 0
	}

	occupied := 0
	for y := span.YStart; y <= span.YEnd; y++ {
		for x := span.XStart; x <= span.XEnd; x++ {
			if len(g.buckets[CellKey{X: x, Y: y}]) > 0 {
				occupied++
			}
		}
	}

	return (float64)(occupied) / (float64)(cells)
}

// GetDebugInfo samples the occupancy of every cell covered by r.
func (g *Grid) GetDebugInfo(r Rect) DebugInfo {
	span := g.ComputeBounds(r)

	info := DebugInfo{
		Stats:      g.Stats(),
		CellWidth:  g.CellWidth,
		CellHeight: g.CellHeight,
		Span:       span,
	}

	if span.CellCount() == 0 {
		return info
	}

	info.Occupancy = make([]int, 0, span.CellCount())
	for y := span.YStart; y <= span.YEnd; y++ {
		for x := span.XStart; x <= span.XEnd; x++ {
			info.Occupancy = append(info.Occupancy, len(g.buckets[CellKey{X: x, Y: y}]))
		}
	}

	return info
}

// CheckConsistency verifies the membership invariant in both directions:
// the sum of bucket populations equals the sum of occupied-cell counts, and
// every occupied key actually holds its object. It is meant for tests and
// post-incident debugging, not for the per-frame path.
func (g *Grid) CheckConsistency() error {
	bucketTotal := 0
	for _, bucket := range g.buckets {
		bucketTotal += len(bucket)
	}

	recordTotal := 0
	for id, rec := range g.records {
		recordTotal += len(rec.keys)

		for _, key := range rec.keys {
			if !bucketContains(g.buckets[key], id) {
				return errors.New("object record lists a bucket that does not hold it").
					WithType(ErrTypeMembershipCorrupt).
					WithTag("object_id", id).
					WithTag("cell_x", key.X).
					WithTag("cell_y", key.Y)
			}
		}
	}

	if bucketTotal != recordTotal {
		return errors.New("bucket memberships do not match tracked records").
			WithType(ErrTypeMembershipCorrupt).
			WithTag("bucket_total", bucketTotal).
			WithTag("record_total", recordTotal)
	}
	return nil
}

func bucketContains(bucket []uint32, id uint32) bool {
	for _, member := range bucket {
		if member == id {
			return true
		}
	}
	return false
}
