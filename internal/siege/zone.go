package siege

import "siege-ca/internal/core"

// BaseInfo is the centre of a player's protection zone.
type BaseInfo struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Bases maps player id to base position.
type Bases map[uint8]BaseInfo

// Clone returns an independent copy of b.
func (b Bases) Clone() Bases {
	out := make(Bases, len(b))
	for id, base := range b {
		out[id] = base
	}
	return out
}

// ZoneFunc reports whether the cell lies inside the zone of a base.
type ZoneFunc func(cellX, cellY, baseX, baseY int) bool

// SquareZone covers the (2*radius+1)^2 square around a base, measured on the
// torus so zones near an edge continue on the opposite side.
func SquareZone(radius, size int) ZoneFunc {
	t := core.Torus{N: size}
	return func(cellX, cellY, baseX, baseY int) bool {
		if radius < 0 {
			return false
		}
		return abs(t.Delta(baseX, cellX)) <= radius && abs(t.Delta(baseY, cellY)) <= radius
	}
}

// ZoneOwner returns the player whose protection zone covers (x, y).
//
// When zones overlap the base with the nearest centre wins and equal
// distances go to the lowest player id, so the result never depends on map
// iteration order.
func ZoneOwner(x, y int, bases Bases, zone ZoneFunc, size int) (uint8, bool) {
	if len(bases) == 0 || zone == nil {
		return 0, false
	}
	t := core.Torus{N: size}
	var (
		best  uint8
		bestD int
		found bool
	)
	for id := uint8(1); id <= MaxPlayers; id++ {
		base, ok := bases[id]
		if !ok || !zone(x, y, base.X, base.Y) {
			continue
		}
		d := t.Dist2(base.X, base.Y, x, y)
		if !found || d < bestD {
			best, bestD, found = id, d, true
		}
	}
	return best, found
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
