package siege

import (
	"fmt"
	"sort"

	"siege-ca/internal/core"
)

// Kind classifies a preset pattern.
type Kind string

const (
	KindStillLife  Kind = "still-life"
	KindOscillator Kind = "oscillator"
	KindSpaceship  Kind = "spaceship"
	KindMethuselah Kind = "methuselah"
)

// Pattern is a preset configuration of live cells given as (x, y) offsets
// from its top-left corner.
type Pattern struct {
	Name  string
	Kind  Kind
	Cells [][2]int
}

// Bounds returns the width and height of the pattern.
func (p Pattern) Bounds() (int, int) {
	w, h := 0, 0
	for _, c := range p.Cells {
		w = max(w, c[0]+1)
		h = max(h, c[1]+1)
	}
	return w, h
}

var patterns = map[string]Pattern{
	"block": {Name: "block", Kind: KindStillLife, Cells: [][2]int{
		{0, 0}, {1, 0}, {0, 1}, {1, 1},
	}},
	"beehive": {Name: "beehive", Kind: KindStillLife, Cells: [][2]int{
		{1, 0}, {2, 0}, {0, 1}, {3, 1}, {1, 2}, {2, 2},
	}},
	"blinker": {Name: "blinker", Kind: KindOscillator, Cells: [][2]int{
		{0, 0}, {1, 0}, {2, 0},
	}},
	"toad": {Name: "toad", Kind: KindOscillator, Cells: [][2]int{
		{1, 0}, {2, 0}, {3, 0}, {0, 1}, {1, 1}, {2, 1},
	}},
	"beacon": {Name: "beacon", Kind: KindOscillator, Cells: [][2]int{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}, {3, 2}, {2, 3}, {3, 3},
	}},
	// travels one cell down-right every four generations
	"glider": {Name: "glider", Kind: KindSpaceship, Cells: [][2]int{
		{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2},
	}},
	"lwss": {Name: "lwss", Kind: KindSpaceship, Cells: [][2]int{
		{1, 0}, {4, 0}, {0, 1}, {0, 2}, {4, 2}, {0, 3}, {1, 3}, {2, 3}, {3, 3},
	}},
	"r-pentomino": {Name: "r-pentomino", Kind: KindMethuselah, Cells: [][2]int{
		{1, 0}, {2, 0}, {0, 1}, {1, 1}, {1, 2},
	}},
	"diehard": {Name: "diehard", Kind: KindMethuselah, Cells: [][2]int{
		{6, 0}, {0, 1}, {1, 1}, {1, 2}, {5, 2}, {6, 2}, {7, 2},
	}},
	"acorn": {Name: "acorn", Kind: KindMethuselah, Cells: [][2]int{
		{1, 0}, {3, 1}, {0, 2}, {1, 2}, {4, 2}, {5, 2}, {6, 2},
	}},
}

// LookupPattern returns the preset with the given name.
func LookupPattern(name string) (Pattern, error) {
	p, ok := patterns[name]
	if !ok {
		return Pattern{}, fmt.Errorf("%w %q", ErrUnknownPattern, name)
	}
	return p, nil
}

// PatternNames lists the presets in sorted order.
func PatternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Stamp writes the pattern's live cells into grid with their top-left corner
// at (x, y), wrapping across edges. Stamped cells take the given owner.
func Stamp(grid Grid, size int, p Pattern, x, y int, owner uint8) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	if size <= 0 || len(grid) != size*size {
		return fmt.Errorf("%w: got %d cells for size %d", ErrGridSize, len(grid), size)
	}
	t := core.Torus{N: size}
	for _, c := range p.Cells {
		grid[t.Index(x+c[0], y+c[1])] = Cell{Alive: true, Owner: owner}
	}
	return nil
}
