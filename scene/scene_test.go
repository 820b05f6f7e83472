package scene

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sowilo/grid"
	"github.com/stretchr/testify/require"
)

type sprite struct {
	rect    grid.Rect
	dirty   bool
	visible bool
}

func (s *sprite) Bounds() grid.Rect {
	return s.rect
}

func (s *sprite) SetVisible(visible bool) {
	s.visible = visible
}

func (s *sprite) Dirty() bool {
	return s.dirty
}

func (s *sprite) SetDirty(dirty bool) {
	s.dirty = dirty
}

func TestSceneAdd(t *testing.T) {
	s := NewScene()

	id, err := s.Add(&sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}, false)
	require.NoError(t, err)
	require.NotZero(t, id)
	require.Equal(t, 1, s.Len())
	require.Equal(t, 1, s.BucketCount())
	require.True(t, s.Grid().Contains(id))
}

func TestSceneAddUnboundedObject(t *testing.T) {
	s := NewScene()

	type opaque struct{}

	_, err := s.Add(&opaque{}, false)
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeObjectNotBounded))
	require.Equal(t, 0, s.Len())
}

func TestSceneBoundsProvider(t *testing.T) {
	type body struct {
		x, y float32
	}

	s := NewScene(WithBoundsProvider(func(o Object) grid.Rect {
		b := o.(*body)
		return grid.Rect{X: b.x, Y: b.y, Width: 10, Height: 10}
	}))

	id, err := s.Add(&body{x: 1500, y: 2500}, false)
	require.NoError(t, err)

	bounds, ok := s.Grid().Bounds(id)
	require.True(t, ok)
	require.True(t, bounds.Equal(grid.Rect{X: 1500, Y: 2500, Width: 10, Height: 10}))
}

func TestSceneRemove(t *testing.T) {
	s := NewScene()

	id, err := s.Add(&sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}, false)
	require.NoError(t, err)

	require.NoError(t, s.Remove(id))
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.BucketCount())

	err = s.Remove(id)
	require.Error(t, err)
	require.True(t, errors.IsType(err, grid.ErrTypeObjectNotTracked))
}

func TestSceneGroupRemovalLeavesNoResidue(t *testing.T) {
	s := NewScene(WithCellSize(100, 100))

	objects := make([]Object, 10)
	for i := range objects {
		objects[i] = &sprite{rect: grid.Rect{
			X:      (float32)(i) * 50,
			Y:      (float32)(i) * 50,
			Width:  150,
			Height: 150,
		}}
	}

	group, err := s.AddGroup(objects, true)
	require.NoError(t, err)
	require.Equal(t, 10, group.Len())
	require.Greater(t, s.BucketCount(), 0)
	require.NoError(t, s.Grid().CheckConsistency())

	require.NoError(t, s.RemoveGroup(group))
	require.Equal(t, 0, s.Len())
	require.Equal(t, 0, s.BucketCount())
	require.NoError(t, s.Grid().CheckConsistency())

	err = s.RemoveGroup(group)
	require.Error(t, err)
	require.True(t, errors.IsType(err, ErrTypeGroupNotRegistered))
}

func TestSceneUpdateAllHonorsDirtyFlag(t *testing.T) {
	s := NewScene()

	obj := &sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}
	_, err := s.Add(obj, false)
	require.NoError(t, err)
	baseline := s.Grid().Mutations()

	// moved across a cell boundary, but not flagged: membership stays
	obj.rect = grid.Rect{X: 5100, Y: 100, Width: 50, Height: 50}
	require.NoError(t, s.UpdateAll())
	require.Equal(t, baseline, s.Grid().Mutations())

	obj.SetDirty(true)
	require.NoError(t, s.UpdateAll())
	require.Greater(t, s.Grid().Mutations(), baseline)
	require.False(t, obj.Dirty())
}

func TestSceneUpdateAllWithoutDirtyTracking(t *testing.T) {
	s := NewScene(WithDirtyTracking(false))

	obj := &sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}
	_, err := s.Add(obj, false)
	require.NoError(t, err)
	baseline := s.Grid().Mutations()

	obj.rect = grid.Rect{X: 5100, Y: 100, Width: 50, Height: 50}
	require.NoError(t, s.UpdateAll())
	require.Greater(t, s.Grid().Mutations(), baseline)
}

func TestSceneCullVisible(t *testing.T) {
	s := NewScene()

	near := &sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}
	mid := &sprite{rect: grid.Rect{X: 5000, Y: 5000, Width: 50, Height: 50}}
	far := &sprite{rect: grid.Rect{X: 9000, Y: 9000, Width: 50, Height: 50}}

	for _, o := range []*sprite{near, mid, far} {
		o.visible = true
		_, err := s.Add(o, false)
		require.NoError(t, err)
	}

	visited, err := s.CullVisible(grid.Rect{X: 0, Y: 0, Width: 500, Height: 500}, false)
	require.NoError(t, err)
	require.Equal(t, 1, visited)
	require.True(t, near.visible)
	require.False(t, mid.visible)
	require.False(t, far.visible)
}

func TestSceneCullVisibleExactTest(t *testing.T) {
	// both objects share the cell (0,0) with the view, only one overlaps it
	overlapping := grid.Rect{X: 50, Y: 50, Width: 100, Height: 100}
	disjoint := grid.Rect{X: 800, Y: 800, Width: 50, Height: 50}
	view := grid.Rect{X: 0, Y: 0, Width: 200, Height: 200}

	t.Run("CullVisible: exact test on", func(t *testing.T) {
		s := NewScene()
		a := &sprite{rect: overlapping}
		b := &sprite{rect: disjoint}

		_, err := s.AddGroup([]Object{a, b}, false)
		require.NoError(t, err)

		_, err = s.CullVisible(view, false)
		require.NoError(t, err)
		require.True(t, a.visible)
		require.False(t, b.visible)
	})

	t.Run("CullVisible: exact test off marks bucket mates", func(t *testing.T) {
		s := NewScene(WithExactTest(false))
		a := &sprite{rect: overlapping}
		b := &sprite{rect: disjoint}

		_, err := s.AddGroup([]Object{a, b}, false)
		require.NoError(t, err)

		_, err = s.CullVisible(view, false)
		require.NoError(t, err)
		require.True(t, a.visible)
		require.True(t, b.visible)
	})
}

func TestSceneCullVisibleSkipUpdate(t *testing.T) {
	s := NewScene()

	obj := &sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}
	_, err := s.Add(obj, false)
	require.NoError(t, err)

	// the move is flagged but the cull is told to skip the update pass
	obj.rect = grid.Rect{X: 5100, Y: 100, Width: 50, Height: 50}
	obj.SetDirty(true)

	_, err = s.CullVisible(grid.Rect{X: 0, Y: 0, Width: 500, Height: 500}, true)
	require.NoError(t, err)
	require.True(t, obj.visible)
	require.True(t, obj.Dirty())

	// with the update pass the object leaves the view
	_, err = s.CullVisible(grid.Rect{X: 0, Y: 0, Width: 500, Height: 500}, false)
	require.NoError(t, err)
	require.False(t, obj.visible)
	require.False(t, obj.Dirty())
}

func TestSceneQueryRect(t *testing.T) {
	s := NewScene()

	a := &sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}
	b := &sprite{rect: grid.Rect{X: 5000, Y: 5000, Width: 50, Height: 50}}

	_, err := s.AddGroup([]Object{a, b}, false)
	require.NoError(t, err)

	result, visited := s.QueryRect(grid.Rect{X: 0, Y: 0, Width: 1000, Height: 1000}, true)
	require.Equal(t, 1, visited)
	require.Len(t, result, 1)
	require.Same(t, a, result[0])
}

func TestSceneQueryCallback(t *testing.T) {
	s := NewScene()

	a := &sprite{rect: grid.Rect{X: 100, Y: 100, Width: 50, Height: 50}}
	_, err := s.Add(a, false)
	require.NoError(t, err)

	t.Run("QueryCallback: hit", func(t *testing.T) {
		hit, _ := s.QueryCallback(grid.Rect{X: 0, Y: 0, Width: 1000, Height: 1000}, func(o Object) bool {
			return o == a
		}, true)
		require.True(t, hit)
	})

	t.Run("QueryCallback: miss", func(t *testing.T) {
		hit, _ := s.QueryCallback(grid.Rect{X: 8000, Y: 8000, Width: 10, Height: 10}, func(o Object) bool {
			return true
		}, true)
		require.False(t, hit)
	})
}

func TestSceneStatsConsistency(t *testing.T) {
	s := NewScene(WithCellSize(100, 100))

	objects := make([]Object, 20)
	for i := range objects {
		objects[i] = &sprite{rect: grid.Rect{
			X:      (float32)(i%5) * 120,
			Y:      (float32)(i/5) * 120,
			Width:  90,
			Height: 90,
		}}
	}

	group, err := s.AddGroup(objects, false)
	require.NoError(t, err)
	require.NoError(t, s.Grid().CheckConsistency())

	stats := s.Stats()
	require.Equal(t, 20, stats.TrackedObjects)
	require.Greater(t, stats.BucketCount, 0)
	require.GreaterOrEqual(t, (float64)(stats.LargestBucket), stats.AverageBucketSize)

	require.NoError(t, s.RemoveGroup(group))
	require.NoError(t, s.Grid().CheckConsistency())
}
