// Package siege implements a territorial Game of Life on a toroidal grid.
//
// Every cell carries an owner id that persists after the cell dies. Players
// hold bases whose protection zones veto births by any other player.
package siege

import "siege-ca/internal/core"

const (
	// MaxPlayers is the highest valid owner id. Owner 0 is unclaimed territory.
	MaxPlayers = 10
	// DefaultGridSize is the side length used when a session does not pick one.
	DefaultGridSize = 64
	// DefaultZoneRadius is the half-width of the square protection zone.
	DefaultZoneRadius = 3
)

// Cell is one grid square. Owner survives death.
type Cell struct {
	Alive bool  `json:"alive"`
	Owner uint8 `json:"owner"`
}

// Grid is a flat row-major slice of size*size cells.
type Grid []Cell

// NewGrid allocates an empty grid with the given side length.
func NewGrid(size int) Grid {
	if size <= 0 {
		size = 1
	}
	return make(Grid, core.Torus{N: size}.Len())
}

// Clone returns an independent copy of g.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	copy(out, g)
	return out
}
