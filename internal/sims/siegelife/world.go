package siegelife

import (
	"context"
	"fmt"
	"math"

	"siege-ca/internal/core"
	"siege-ca/internal/siege"
)

// World owns a double-buffered siege grid and its base registry. It is not
// safe for concurrent use; a single driver calls Step and the mutators.
type World struct {
	cfg   Config
	rules siege.Rules

	cur, nxt siege.Grid
	bases    siege.Bases

	generation uint64
	display    []uint8
	err        error
}

// New returns a siege world of the given size using defaults.
func New(size int) *World {
	cfg := DefaultConfig()
	cfg.Size = size
	return NewWithConfig(cfg)
}

// NewWithConfig returns a siege world configured from the provided options.
func NewWithConfig(cfg Config) *World {
	cfg = cfg.normalized()
	return &World{
		cfg:     cfg,
		rules:   siege.NewRules(cfg.Size, cfg.ZoneRadius),
		cur:     siege.NewGrid(cfg.Size),
		nxt:     siege.NewGrid(cfg.Size),
		bases:   siege.Bases{},
		display: make([]uint8, cfg.Size*cfg.Size),
	}
}

// Name returns the simulation identifier.
func (w *World) Name() string { return "siege" }

// Size reports the grid dimensions.
func (w *World) Size() core.Size { return core.Size{W: w.cfg.Size, H: w.cfg.Size} }

// Config returns the active configuration.
func (w *World) Config() Config { return w.cfg }

// Cells exposes the palette-indexed display buffer.
func (w *World) Cells() []uint8 { return w.display }

// Grid exposes the current generation. The slice is reused after the next
// Step, so callers that keep it must Clone.
func (w *World) Grid() siege.Grid { return w.cur }

// Bases returns a copy of the base registry.
func (w *World) Bases() siege.Bases { return w.bases.Clone() }

// ZoneRadius returns the half-width of the protection zones.
func (w *World) ZoneRadius() int { return w.cfg.ZoneRadius }

// Generation counts completed steps since the last reset or restore.
func (w *World) Generation() uint64 { return w.generation }

// Err returns the last error raised by Step.
func (w *World) Err() error { return w.err }

// Reset clears the grid, places one base per player on a ring around the
// centre and seeds a random soup of the player's cells around each base.
func (w *World) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = w.cfg.Seed
	}
	rng := core.NewRNG(effective)

	clear(w.cur)
	clear(w.nxt)
	w.bases = siege.Bases{}
	w.generation = 0
	w.err = nil

	for i, pos := range ringPositions(w.cfg.Size, w.cfg.Players) {
		id := uint8(i + 1)
		w.bases[id] = pos
		w.seedSoup(rng, id, pos)
	}
	w.rebuildDisplay()
}

// Step advances one generation, recording any failure in Err.
func (w *World) Step() {
	if err := w.Advance(context.Background()); err != nil {
		w.err = err
	}
}

// Advance computes the next generation into the back buffer and swaps.
func (w *World) Advance(ctx context.Context) error {
	var err error
	if w.cfg.Workers > 1 {
		err = w.rules.StepParallel(ctx, w.nxt, w.cur, w.bases, w.cfg.Workers)
	} else {
		err = w.rules.StepInto(w.nxt, w.cur, w.bases)
	}
	if err != nil {
		return fmt.Errorf("advance generation %d: %w", w.generation, err)
	}
	w.cur, w.nxt = w.nxt, w.cur
	w.generation++
	w.rebuildDisplay()
	return nil
}

// PlaceBase adds or moves the base of player id.
func (w *World) PlaceBase(id uint8, x, y int) error {
	base := siege.BaseInfo{X: x, Y: y}
	if err := siege.ValidateBase(id, base, w.cfg.Size); err != nil {
		return err
	}
	w.bases[id] = base
	return nil
}

// RemoveBase deletes the base of player id and reports whether it existed.
func (w *World) RemoveBase(id uint8) bool {
	if _, ok := w.bases[id]; !ok {
		return false
	}
	delete(w.bases, id)
	return true
}

// StampPattern writes a named preset with its top-left corner at (x, y).
func (w *World) StampPattern(name string, x, y int, owner uint8) error {
	p, err := siege.LookupPattern(name)
	if err != nil {
		return err
	}
	if err := siege.Stamp(w.cur, w.cfg.Size, p, x, y, owner); err != nil {
		return err
	}
	w.rebuildDisplay()
	return nil
}

// SetCell overwrites the wrapped cell at (x, y).
func (w *World) SetCell(x, y int, cell siege.Cell) error {
	if err := siege.ValidateOwner(cell.Owner); err != nil {
		return err
	}
	t := core.Torus{N: w.cfg.Size}
	idx := t.Index(x, y)
	w.cur[idx] = cell
	w.display[idx] = encodeDisplayValue(cell)
	return nil
}

// SetZoneRadius changes the protection zone size for subsequent steps.
func (w *World) SetZoneRadius(r int) {
	if r < 0 {
		r = 0
	}
	w.cfg.ZoneRadius = r
	w.rules = siege.NewRules(w.cfg.Size, r)
}

// SetWorkers changes how many goroutines compute each step.
func (w *World) SetWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	w.cfg.Workers = n
}

// Restore replaces the world state, typically from a stored snapshot.
func (w *World) Restore(generation uint64, cells siege.Grid, bases siege.Bases) error {
	if err := siege.ValidateGrid(cells, w.cfg.Size); err != nil {
		return fmt.Errorf("restore cells: %w", err)
	}
	if err := siege.ValidateBases(bases, w.cfg.Size); err != nil {
		return fmt.Errorf("restore bases: %w", err)
	}
	copy(w.cur, cells)
	w.bases = bases.Clone()
	w.generation = generation
	w.err = nil
	w.rebuildDisplay()
	return nil
}

// Stats summarises the current generation.
type Stats struct {
	Generation uint64                      `json:"generation"`
	Alive      int                         `json:"alive"`
	Owners     map[uint8]siege.OwnerCount `json:"owners"`
}

// Stats tallies the current generation.
func (w *World) Stats() Stats {
	return Stats{
		Generation: w.generation,
		Alive:      siege.CountAlive(w.cur),
		Owners:     siege.CountByOwner(w.cur),
	}
}

func (w *World) seedSoup(rng *core.RNG, owner uint8, centre siege.BaseInfo) {
	r := w.cfg.SoupRadius
	r2 := r * r
	t := core.Torus{N: w.cfg.Size}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			if !rng.Chance(w.cfg.Density) {
				continue
			}
			w.cur[t.Index(centre.X+dx, centre.Y+dy)] = siege.Cell{Alive: true, Owner: owner}
		}
	}
}

// ringPositions spreads n bases evenly on a circle of a third of the grid
// around its centre.
func ringPositions(size, n int) []siege.BaseInfo {
	if n <= 0 {
		return nil
	}
	t := core.Torus{N: size}
	c := float64(size) / 2
	radius := float64(size) / 3
	out := make([]siege.BaseInfo, n)
	for i := range out {
		angle := 2 * math.Pi * float64(i) / float64(n)
		x := int(math.Round(c + radius*math.Cos(angle)))
		y := int(math.Round(c + radius*math.Sin(angle)))
		x, y = t.Wrap(x, y)
		out[i] = siege.BaseInfo{X: x, Y: y}
	}
	return out
}

func init() {
	core.Register("siege", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
}
