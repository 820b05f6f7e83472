package scene

import (
	"testing"

	"github.com/aukilabs/sowilo/grid"
	"github.com/stretchr/testify/require"
)

func TestGroupOrdering(t *testing.T) {
	s := NewScene()

	objects := make([]Object, 5)
	for i := range objects {
		objects[i] = &sprite{rect: grid.Rect{X: (float32)(i) * 2000, Width: 10, Height: 10}}
	}

	group, err := s.AddGroup(objects, false)
	require.NoError(t, err)

	members := group.Members()
	require.Len(t, members, 5)

	for i, id := range members {
		o, ok := s.Object(id)
		require.True(t, ok)
		require.Same(t, objects[i], o)
	}
}

func TestGroupOrderingSurvivesRemoval(t *testing.T) {
	s := NewScene()

	objects := make([]Object, 4)
	for i := range objects {
		objects[i] = &sprite{rect: grid.Rect{X: (float32)(i) * 2000, Width: 10, Height: 10}}
	}

	group, err := s.AddGroup(objects, false)
	require.NoError(t, err)

	members := group.Members()
	require.NoError(t, s.Remove(members[1]))

	require.Equal(t, []uint32{members[0], members[2], members[3]}, group.Members())
}

func TestGroupIdentity(t *testing.T) {
	s := NewScene()

	a, err := s.AddGroup([]Object{&sprite{rect: grid.Rect{Width: 10, Height: 10}}}, false)
	require.NoError(t, err)
	b, err := s.AddGroup([]Object{&sprite{rect: grid.Rect{Width: 10, Height: 10}}}, true)
	require.NoError(t, err)

	require.NotEmpty(t, a.ID)
	require.NotEmpty(t, b.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.False(t, a.Static)
	require.True(t, b.Static)
	require.Len(t, s.Groups(), 2)
}

func TestDefaultGroupSplitsByStatic(t *testing.T) {
	s := NewScene()

	_, err := s.Add(&sprite{rect: grid.Rect{Width: 10, Height: 10}}, false)
	require.NoError(t, err)
	_, err = s.Add(&sprite{rect: grid.Rect{X: 2000, Width: 10, Height: 10}}, false)
	require.NoError(t, err)
	_, err = s.Add(&sprite{rect: grid.Rect{X: 4000, Width: 10, Height: 10}}, true)
	require.NoError(t, err)

	groups := s.Groups()
	require.Len(t, groups, 2)
	require.Equal(t, 2, groups[0].Len())
	require.Equal(t, 1, groups[1].Len())
}

func TestIDGenerator(t *testing.T) {
	var ids idGenerator

	first := ids.New()
	second := ids.New()
	require.Equal(t, (uint32)(1), first)
	require.Equal(t, (uint32)(2), second)

	ids.Reuse(first)
	require.Equal(t, first, ids.New())
	require.Equal(t, (uint32)(3), ids.New())
}
