package life

import "siege-ca/internal/core"

// Life implements Conway's Game of Life with toroidal wrapping. It is the
// ownerless reference the siege rules must reduce to when no bases exist.
type Life struct {
	w, h int
	cur  []uint8
	nxt  []uint8
	gen  uint64
}

// New returns a Life simulation with the provided dimensions.
func New(w, h int) *Life {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	cells := make([]uint8, w*h)
	return &Life{w: w, h: h, cur: cells, nxt: make([]uint8, len(cells))}
}

// Name returns the simulation identifier.
func (l *Life) Name() string { return "life" }

// Size returns the grid dimensions.
func (l *Life) Size() core.Size { return core.Size{W: l.w, H: l.h} }

// Cells exposes the current grid values (0 dead, 1 alive).
func (l *Life) Cells() []uint8 { return l.cur }

// Generation counts completed steps since the last reset.
func (l *Life) Generation() uint64 { return l.gen }

// Set marks the wrapped cell (x, y) alive or dead.
func (l *Life) Set(x, y int, alive bool) {
	x = (x%l.w + l.w) % l.w
	y = (y%l.h + l.h) % l.h
	l.cur[y*l.w+x] = 0
	if alive {
		l.cur[y*l.w+x] = 1
	}
}

// Reset randomizes the board using the provided seed.
func (l *Life) Reset(seed int64) {
	core.NewRNG(seed).Fill(l.cur, 0.5)
	l.gen = 0
}

// Step advances the simulation by one generation.
func (l *Life) Step() {
	w, h := l.w, l.h
	for y := 0; y < h; y++ {
		up := ((y - 1 + h) % h) * w
		row := y * w
		down := ((y + 1) % h) * w
		for x := 0; x < w; x++ {
			left := (x - 1 + w) % w
			right := (x + 1) % w
			n := l.cur[up+left] + l.cur[up+x] + l.cur[up+right] +
				l.cur[row+left] + l.cur[row+right] +
				l.cur[down+left] + l.cur[down+x] + l.cur[down+right]
			var next uint8
			if n == 3 || (n == 2 && l.cur[row+x] == 1) {
				next = 1
			}
			l.nxt[row+x] = next
		}
	}
	l.cur, l.nxt = l.nxt, l.cur
	l.gen++
}

func init() {
	core.Register("life", func(cfg map[string]string) core.Sim {
		c := FromMap(cfg)
		return New(c.Width, c.Height)
	})
}
