package main

import (
	"math/rand"

	"github.com/aukilabs/sowilo/featureflag"
	"github.com/aukilabs/sowilo/grid"
	"github.com/aukilabs/sowilo/scene"
)

// sprite is the demo's tracked object: a box on a random walk implementing
// the scene capabilities.
type sprite struct {
	rect    grid.Rect
	vx      float32
	vy      float32
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

type frameSummary struct {
	Frame             uint64  `json:"frame"`
	TrackedObjects    int     `json:"tracked_objects"`
	VisibleObjects    int     `json:"visible_objects"`
	BucketsVisited    int     `json:"buckets_visited"`
	BucketCount       int     `json:"bucket_count"`
	AverageBucketSize float64 `json:"average_bucket_size"`
	LargestBucket     int     `json:"largest_bucket"`
	ViewSparseness    float64 `json:"view_sparseness"`
	ViewX             float32 `json:"view_x"`
	ViewY             float32 `json:"view_y"`
}

// simulation drives a scene of moving sprites and a panning viewport. It is
// owned by the frame loop goroutine; snapshots leave it by value.
type simulation struct {
	scene   *scene.Scene
	sprites []*sprite
	world   grid.Rect
	view    grid.Rect
	viewVX  float32
	viewVY  float32
	frame   uint64

	culling bool
}

func newSimulation(conf config, flags featureflag.FeatureFlag) (*simulation, error) {
	sim := &simulation{
		scene: scene.NewScene(
			scene.WithCellSize(conf.CellWidth, conf.CellHeight),
			scene.WithDirtyTracking(!flags.IsSet(featureflag.FlagDisableDirtyTracking)),
			scene.WithExactTest(!flags.IsSet(featureflag.FlagDisableExactTest)),
		),
		world: grid.Rect{Width: conf.WorldWidth, Height: conf.WorldHeight},
		view: grid.Rect{
			Width:  conf.ViewWidth,
			Height: conf.ViewHeight,
		},
		viewVX:  conf.Speed * 2,
		viewVY:  conf.Speed,
		culling: !flags.IsSet(featureflag.FlagDisableCulling),
	}

	movers := make([]scene.Object, conf.ObjectCount)
	for i := range movers {
		s := sim.randomSprite(conf)
		s.vx = (rand.Float32()*2 - 1) * conf.Speed
		s.vy = (rand.Float32()*2 - 1) * conf.Speed
		sim.sprites = append(sim.sprites, s)
		movers[i] = s
	}
	if _, err := sim.scene.AddGroup(movers, false); err != nil {
		return nil, err
	}

	statics := make([]scene.Object, conf.StaticCount)
	for i := range statics {
		s := sim.randomSprite(conf)
		sim.sprites = append(sim.sprites, s)
		statics[i] = s
	}
	if _, err := sim.scene.AddGroup(statics, true); err != nil {
		return nil, err
	}

	return sim, nil
}

func (sim *simulation) randomSprite(conf config) *sprite {
	return &sprite{
		rect: grid.Rect{
			X:      rand.Float32() * (conf.WorldWidth - conf.ObjectSize),
			Y:      rand.Float32() * (conf.WorldHeight - conf.ObjectSize),
			Width:  conf.ObjectSize,
			Height: conf.ObjectSize,
		},
	}
}

// step advances the world by dt seconds, runs the per-frame culling
// workflow and returns a snapshot of the frame.
func (sim *simulation) step(dt float32) (frameSummary, error) {
	sim.frame++

	for _, s := range sim.sprites {
		if s.vx == 0 && s.vy == 0 {
			continue
		}

		s.rect.X += s.vx * dt
		s.rect.Y += s.vy * dt
		s.dirty = true

		if s.rect.X < 0 || s.rect.X+s.rect.Width > sim.world.Width {
			s.vx = -s.vx
		}
		if s.rect.Y < 0 || s.rect.Y+s.rect.Height > sim.world.Height {
			s.vy = -s.vy
		}
	}

	sim.view.X += sim.viewVX * dt
	sim.view.Y += sim.viewVY * dt
	if sim.view.X < 0 || sim.view.X+sim.view.Width > sim.world.Width {
		sim.viewVX = -sim.viewVX
	}
	if sim.view.Y < 0 || sim.view.Y+sim.view.Height > sim.world.Height {
		sim.viewVY = -sim.viewVY
	}

	var visited int
	var err error
	if sim.culling {
		visited, err = sim.scene.CullVisible(sim.view, false)
	} else {
		err = sim.scene.UpdateAll()
	}
	if err != nil {
		return frameSummary{}, err
	}

	visible := 0
	for _, s := range sim.sprites {
		if s.visible {
			visible++
		}
	}

	stats := sim.scene.Stats()
	return frameSummary{
		Frame:             sim.frame,
		TrackedObjects:    stats.TrackedObjects,
		VisibleObjects:    visible,
		BucketsVisited:    visited,
		BucketCount:       stats.BucketCount,
		AverageBucketSize: stats.AverageBucketSize,
		LargestBucket:     stats.LargestBucket,
		ViewSparseness:    sim.scene.Sparseness(sim.view),
		ViewX:             sim.view.X,
		ViewY:             sim.view.Y,
	}, nil
}

func (sim *simulation) debugInfo() grid.DebugInfo {
	return sim.scene.GetDebugInfo(sim.view)
}
