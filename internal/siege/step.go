package siege

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Rules binds a grid size to a zone predicate. The zero Zone falls back to
// SquareZone(DefaultZoneRadius, Size).
type Rules struct {
	Size int
	Zone ZoneFunc
}

// NewRules returns Rules using square protection zones of the given radius.
func NewRules(size, zoneRadius int) Rules {
	return Rules{Size: size, Zone: SquareZone(zoneRadius, size)}
}

// Step computes the generation after grid on a size*size torus using the
// default protection zones. The input is never modified.
func Step(grid Grid, bases Bases, size int) (Grid, error) {
	return NewRules(size, DefaultZoneRadius).Step(grid, bases)
}

// Step returns a freshly allocated next generation.
func (r Rules) Step(grid Grid, bases Bases) (Grid, error) {
	next := make(Grid, len(grid))
	if err := r.StepInto(next, grid, bases); err != nil {
		return nil, err
	}
	return next, nil
}

// StepInto writes the generation after src into dst. Every cell of dst is
// overwritten and src is only read, so the two buffers can be swapped by the
// caller afterwards.
func (r Rules) StepInto(dst, src Grid, bases Bases) error {
	if err := r.check(dst, src, bases); err != nil {
		return err
	}
	r.stepRows(dst, src, bases, r.zone(), 0, r.Size)
	return nil
}

// StepParallel is StepInto with the rows split into bands computed by up to
// workers goroutines. Each band reads the frozen src and writes only its own
// rows of dst.
func (r Rules) StepParallel(ctx context.Context, dst, src Grid, bases Bases, workers int) error {
	if err := r.check(dst, src, bases); err != nil {
		return err
	}
	zone := r.zone()
	if workers <= 1 {
		r.stepRows(dst, src, bases, zone, 0, r.Size)
		return nil
	}
	if workers > r.Size {
		workers = r.Size
	}
	band := (r.Size + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for y0 := 0; y0 < r.Size; y0 += band {
		y1 := min(y0+band, r.Size)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.stepRows(dst, src, bases, zone, y0, y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("parallel step: %w", err)
	}
	return nil
}

func (r Rules) zone() ZoneFunc {
	if r.Zone != nil {
		return r.Zone
	}
	return SquareZone(DefaultZoneRadius, r.Size)
}

func (r Rules) check(dst, src Grid, bases Bases) error {
	if err := ValidateGrid(src, r.Size); err != nil {
		return err
	}
	if len(dst) != len(src) {
		return fmt.Errorf("%w: destination has %d cells, want %d", ErrGridSize, len(dst), len(src))
	}
	if &dst[0] == &src[0] {
		return ErrAliasedBuffers
	}
	return ValidateBases(bases, r.Size)
}

func (r Rules) stepRows(dst, src Grid, bases Bases, zone ZoneFunc, y0, y1 int) {
	n := r.Size
	var (
		owners    [MaxPlayers + 1]int
		neighbors [8]int
	)
	for y := y0; y < y1; y++ {
		up := ((y - 1 + n) % n) * n
		row := y * n
		down := ((y + 1) % n) * n
		for x := 0; x < n; x++ {
			left := (x - 1 + n) % n
			right := (x + 1) % n
			neighbors = [8]int{
				up + left, up + x, up + right,
				row + left, row + right,
				down + left, down + x, down + right,
			}

			owners = [MaxPlayers + 1]int{}
			alive := 0
			for _, idx := range neighbors {
				c := src[idx]
				if !c.Alive {
					continue
				}
				alive++
				owners[c.Owner]++
			}

			cur := src[row+x]
			next := cur
			if cur.Alive {
				next.Alive = alive == 2 || alive == 3
			} else if alive == 3 {
				owner := majorityOwner(&owners)
				if owner == 0 {
					owner = cur.Owner
				}
				if !vetoed(x, y, owner, bases, zone, n) {
					next = Cell{Alive: true, Owner: owner}
				}
			}
			dst[row+x] = next
		}
	}
}

// majorityOwner picks the owner with the strictly highest count, scanning ids
// in ascending order so ties go to the lowest id. Owner 0 never wins.
func majorityOwner(owners *[MaxPlayers + 1]int) uint8 {
	var best uint8
	bestCount := 0
	for id := 1; id <= MaxPlayers; id++ {
		if owners[id] > bestCount {
			best = uint8(id)
			bestCount = owners[id]
		}
	}
	return best
}

func vetoed(x, y int, owner uint8, bases Bases, zone ZoneFunc, size int) bool {
	defender, ok := ZoneOwner(x, y, bases, zone, size)
	return ok && defender != owner
}
