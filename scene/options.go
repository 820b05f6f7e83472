package scene

// Option configures a Scene at construction.
type Option func(*Scene)

// WithCellSize sets the grid resolution per axis. Non-positive values fall
// back to the default 1000x1000 cells.
func WithCellSize(width, height float32) Option {
	return func(s *Scene) {
		s.cellWidth = width
		s.cellHeight = height
	}
}

// WithBoundsProvider makes the scene compute AABBs through p instead of the
// objects' Bounded capability.
func WithBoundsProvider(p BoundsProvider) Option {
	return func(s *Scene) {
		s.boundsProvider = p
	}
}

// WithDirtyTracking toggles dirty-only updates. Enabled by default: objects
// exposing the DirtyFlagger capability are skipped by UpdateAll unless
// flagged. Disabling it updates every object every pass.
func WithDirtyTracking(enabled bool) Option {
	return func(s *Scene) {
		s.dirtyTracking = enabled
	}
}

// WithExactTest toggles the exact rectangle-overlap filter used by
// CullVisible. Enabled by default; disabling it marks every object in any
// cell touching the view visible, which is cheaper and over-approximate.
func WithExactTest(enabled bool) Option {
	return func(s *Scene) {
		s.exactTest = enabled
	}
}
