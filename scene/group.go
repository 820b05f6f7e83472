package scene

// Group is an ordered batch of tracked objects registered together, e.g. a
// static background layer. Group membership has no effect on cell logic, it
// only enables bulk registration, bulk removal and ordered iteration.
type Group struct {
	// ID names the group. Generated, unique per scene.
	ID string

	// Static is advisory metadata recorded at registration. The scene does
	// not special-case static objects beyond keeping the flag.
	Static bool

	members []uint32
}

// Members returns the object ids in registration order.
func (g *Group) Members() []uint32 {
	members := make([]uint32, len(g.members))
	copy(members, g.members)
	return members
}

func (g *Group) Len() int {
	return len(g.members)
}

func (g *Group) add(id uint32) {
	g.members = append(g.members, id)
}

// remove drops the id while preserving registration order.
func (g *Group) remove(id uint32) {
	for i := range g.members {
		if g.members[i] != id {
			continue
		}

		g.members = append(g.members[:i], g.members[i+1:]...)
		return
	}
}
