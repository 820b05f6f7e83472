package scene

// A sequential object id generator. Unlike the rest of the module it hands
// out ids starting at 1 so that 0 stays available as a sentinel. Removed
// ids are reused in priority.
//
// Not synchronized: a scene and everything it owns is single-threaded by
// contract.
type idGenerator struct {
	currentID   uint32
	reusableIDs map[uint32]struct{}
}

func (g *idGenerator) New() uint32 {
	for id := range g.reusableIDs {
		delete(g.reusableIDs, id)
		return id
	}

	g.currentID++
	return g.currentID
}

func (g *idGenerator) Reuse(id uint32) {
	if g.reusableIDs == nil {
		g.reusableIDs = make(map[uint32]struct{})
	}

	g.reusableIDs[id] = struct{}{}
}
