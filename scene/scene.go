package scene

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/sowilo/grid"
	"github.com/google/uuid"
)

const (
	// ErrTypeObjectNotBounded is the error type returned when an object
	// exposes no AABB: no BoundsProvider is configured and the object does
	// not implement Bounded.
	ErrTypeObjectNotBounded = "object_not_bounded"

	// ErrTypeGroupNotRegistered is the error type returned when removing a
	// group the scene does not own.
	ErrTypeGroupNotRegistered = "group_not_registered"
)

// Scene tracks application objects in a uniform-grid spatial index and
// drives visibility culling over them. A scene instance is single-threaded:
// all operations must come from one logical thread, and structural changes
// are forbidden while a query traversal is running.
type Scene struct {
	cellWidth      float32
	cellHeight     float32
	boundsProvider BoundsProvider
	dirtyTracking  bool
	exactTest      bool

	grid         *grid.Grid
	ids          idGenerator
	objects      map[uint32]Object
	objectGroups map[uint32]*Group
	groups       []*Group
}

func NewScene(opts ...Option) *Scene {
	s := &Scene{
		cellWidth:     grid.DefaultCellSize,
		cellHeight:    grid.DefaultCellSize,
		dirtyTracking: true,
		exactTest:     true,
		objects:       make(map[uint32]Object),
		objectGroups:  make(map[uint32]*Group),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.grid = grid.NewGrid(s.cellWidth, s.cellHeight)
	return s
}

// Add registers a single object and assigns its initial cell membership.
// Objects added one by one land in a shared anonymous group.
func (s *Scene) Add(o Object, static bool) (uint32, error) {
	group := s.defaultGroup(static)

	id, err := s.add(o, group)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddGroup registers a batch of objects as a new named group, preserving
// their order.
func (s *Scene) AddGroup(objects []Object, static bool) (*Group, error) {
	group := &Group{
		ID:     uuid.NewString(),
		Static: static,
	}
	s.groups = append(s.groups, group)

	for _, o := range objects {
		if _, err := s.add(o, group); err != nil {
			return nil, err
		}
	}
	return group, nil
}

// Remove deregisters an object, pruning all of its bucket membership.
// Removing an id that is not tracked is a caller bug and fails fast.
func (s *Scene) Remove(id uint32) error {
	if _, ok := s.objects[id]; !ok {
		return errors.New("object is not tracked").
			WithType(grid.ErrTypeObjectNotTracked).
			WithTag("object_id", id)
	}

	if err := s.grid.Remove(id); err != nil {
		return err
	}

	if group, ok := s.objectGroups[id]; ok {
		group.remove(id)
	}

	delete(s.objects, id)
	delete(s.objectGroups, id)
	s.ids.Reuse(id)
	return nil
}

// RemoveGroup deregisters every member of the group and drops the group
// itself.
func (s *Scene) RemoveGroup(group *Group) error {
	found := false
	for i := range s.groups {
		if s.groups[i] != group {
			continue
		}

		s.groups = append(s.groups[:i], s.groups[i+1:]...)
		found = true
		break
	}
	if !found {
		return errors.New("group is not registered").
			WithType(ErrTypeGroupNotRegistered).
			WithTag("group_id", group.ID)
	}

	for _, id := range group.Members() {
		if err := s.Remove(id); err != nil {
			return err
		}
	}
	return nil
}

// Object returns the tracked object for an id.
func (s *Scene) Object(id uint32) (Object, bool) {
	o, ok := s.objects[id]
	return o, ok
}

// Len returns the number of tracked objects across all groups.
func (s *Scene) Len() int {
	return len(s.objects)
}

// Groups returns the scene's groups in registration order.
func (s *Scene) Groups() []*Group {
	groups := make([]*Group, len(s.groups))
	copy(groups, s.groups)
	return groups
}

// UpdateAll refreshes the cell membership of every tracked object, group by
// group in registration order. With dirty tracking enabled, objects
// exposing the DirtyFlagger capability are only updated when flagged, and
// the flag is cleared afterwards. This is the main cost-control lever for
// large scenes: membership work is proportional to objects that actually
// moved across a cell boundary.
func (s *Scene) UpdateAll() error {
	for _, group := range s.groups {
		for _, id := range group.members {
			o := s.objects[id]

			if s.dirtyTracking {
				if flagger, ok := o.(DirtyFlagger); ok {
					if !flagger.Dirty() {
						continue
					}

					if err := s.updateObject(id, o); err != nil {
						return err
					}
					flagger.SetDirty(false)
					continue
				}
			}

			if err := s.updateObject(id, o); err != nil {
				return err
			}
		}
	}
	return nil
}

// CullVisible combines the per-frame visibility workflow: an optional
// UpdateAll, marking every object invisible, querying the view rect with
// the configured exact-test mode and marking the result visible. It returns
// the number of non-empty buckets the query visited.
//
// After it returns, exactly the objects overlapping view (or, with the
// exact test disabled, the objects sharing a cell with it) are visible.
func (s *Scene) CullVisible(view grid.Rect, skipUpdate bool) (int, error) {
	if !skipUpdate {
		if err := s.UpdateAll(); err != nil {
			return 0, err
		}
	}

	for _, o := range s.objects {
		if v, ok := o.(Visibility); ok {
			v.SetVisible(false)
		}
	}

	ids, visited := s.grid.QueryRect(view, s.exactTest)

	visible := 0
	for _, id := range ids {
		if v, ok := s.objects[id].(Visibility); ok {
			v.SetVisible(true)
			visible++
		}
	}

	instrumentCull(visible)
	return visited, nil
}

// QueryRect returns the tracked objects whose cells overlap r, optionally
// filtered by the exact overlap test. Without the exact test an object may
// appear once per covered cell.
func (s *Scene) QueryRect(r grid.Rect, exact bool) ([]Object, int) {
	ids, visited := s.grid.QueryRect(r, exact)

	result := make([]Object, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.objects[id])
	}
	return result, visited
}

// QueryCallback invokes fn per candidate and stops as soon as fn returns
// true, reporting whether it did. fn must not add or remove objects.
func (s *Scene) QueryCallback(r grid.Rect, fn func(o Object) bool, exact bool) (bool, int) {
	return s.grid.QueryCallback(r, func(id uint32) bool {
		return fn(s.objects[id])
	}, exact)
}

// Stats exposes the underlying grid diagnostics.
func (s *Scene) Stats() grid.Stats {
	return s.grid.Stats()
}

func (s *Scene) BucketCount() int {
	return s.grid.BucketCount()
}

func (s *Scene) AverageBucketSize() float64 {
	return s.grid.AverageBucketSize()
}

func (s *Scene) LargestBucket() int {
	return s.grid.LargestBucket()
}

func (s *Scene) Sparseness(r grid.Rect) float64 {
	return s.grid.Sparseness(r)
}

func (s *Scene) GetDebugInfo(r grid.Rect) grid.DebugInfo {
	return s.grid.GetDebugInfo(r)
}

// Grid returns the underlying index for ad-hoc inspection. Mutating it
// directly bypasses the scene's bookkeeping.
func (s *Scene) Grid() *grid.Grid {
	return s.grid
}

func (s *Scene) add(o Object, group *Group) (uint32, error) {
	if o == nil {
		return 0, errors.New("object is nil")
	}
	if _, err := s.boundsOf(o); err != nil {
		return 0, err
	}

	id := s.ids.New()
	s.objects[id] = o
	s.objectGroups[id] = group
	group.add(id)

	// initial membership, regardless of the dirty flag
	if err := s.updateObject(id, o); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Scene) updateObject(id uint32, o Object) error {
	rect, err := s.boundsOf(o)
	if err != nil {
		return err
	}

	_, err = s.grid.Update(id, rect)
	return err
}

func (s *Scene) boundsOf(o Object) (grid.Rect, error) {
	if s.boundsProvider != nil {
		return s.boundsProvider(o), nil
	}

	bounded, ok := o.(Bounded)
	if !ok {
		return grid.Rect{}, errors.New("object exposes no AABB").
			WithType(ErrTypeObjectNotBounded)
	}
	return bounded.Bounds(), nil
}

func (s *Scene) defaultGroup(static bool) *Group {
	for _, group := range s.groups {
		if group.ID == defaultGroupID && group.Static == static {
			return group
		}
	}

	group := &Group{
		ID:     defaultGroupID,
		Static: static,
	}
	s.groups = append(s.groups, group)
	return group
}

const defaultGroupID = "default"
