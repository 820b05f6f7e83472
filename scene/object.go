package scene

import "github.com/aukilabs/sowilo/grid"

// Object is an application object tracked by a Scene. Objects are borrowed:
// the scene never copies or destroys them, and the owner must Remove an
// object before discarding it or a dangling reference stays in the index.
//
// Integration happens through small capability interfaces instead of
// attribute lookups: a tracked object implements the capabilities below for
// the features it takes part in.
type Object any

// Bounded exposes an object's precomputed AABB. It is the bounds source
// when the scene is not configured with a BoundsProvider.
type Bounded interface {
	Bounds() grid.Rect
}

// Visibility is implemented by objects whose visibility flag is driven by
// CullVisible. Objects without it still take part in queries.
type Visibility interface {
	SetVisible(visible bool)
}

// DirtyFlagger reports whether an object's AABB may have changed since the
// last update. The scene only honors the flag and clears it after updating;
// it never infers movement itself. Objects without the capability are
// updated every pass.
type DirtyFlagger interface {
	Dirty() bool
	SetDirty(dirty bool)
}

// BoundsProvider computes an object's AABB, typically by translating its
// local geometry bounds by its position and scale. Configuring one switches
// the scene away from the Bounded capability.
type BoundsProvider func(o Object) grid.Rect
