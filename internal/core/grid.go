package core

// Torus addresses a square N*N grid stored in row-major order whose edges wrap.
type Torus struct {
	N int
}

// Len returns the number of cells on the torus.
func (t Torus) Len() int { return t.N * t.N }

// Index returns the linear slice index for coordinates (x, y) after wrapping.
func (t Torus) Index(x, y int) int {
	x, y = t.Wrap(x, y)
	return y*t.N + x
}

// Coords converts a linear index back to (x, y).
func (t Torus) Coords(i int) (int, int) { return i % t.N, i / t.N }

// Wrap applies toroidal wrapping to the provided coordinates.
func (t Torus) Wrap(x, y int) (int, int) {
	return t.wrap(x), t.wrap(y)
}

// Contains reports whether (x, y) already lies on the grid without wrapping.
func (t Torus) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < t.N && y < t.N
}

// Delta returns the shortest signed offset from a to b along one axis.
func (t Torus) Delta(a, b int) int {
	if t.N <= 0 {
		return b - a
	}
	d := t.wrap(b - a)
	if d > t.N/2 {
		d -= t.N
	}
	return d
}

// Dist2 is the squared toroidal distance between two points.
func (t Torus) Dist2(ax, ay, bx, by int) int {
	dx := t.Delta(ax, bx)
	dy := t.Delta(ay, by)
	return dx*dx + dy*dy
}

func (t Torus) wrap(v int) int {
	if t.N <= 0 {
		return v
	}
	return (v%t.N + t.N) % t.N
}
