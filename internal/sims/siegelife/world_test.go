package siegelife

import (
	"context"
	"testing"

	"siege-ca/internal/core"
	"siege-ca/internal/siege"
	"siege-ca/internal/sims/life"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Size = 32
	cfg.Players = 3
	cfg.SoupRadius = 4
	cfg.Seed = 7
	return cfg
}

func TestResetDeterministic(t *testing.T) {
	world := NewWithConfig(smallConfig())
	world.Reset(0)

	initial := world.Grid().Clone()
	initialBases := world.Bases()
	require.NotZero(t, siege.CountAlive(initial))
	require.Len(t, initialBases, 3)

	world.Step()
	world.Step()
	world.Reset(0)

	assert.Equal(t, initial, world.Grid())
	assert.Equal(t, initialBases, world.Bases())
	assert.Zero(t, world.Generation())

	world.Reset(777)
	assert.NotEqual(t, initial, world.Grid())
}

func TestResetSeedsSoupAroundBases(t *testing.T) {
	cfg := smallConfig()
	cfg.Density = 1
	world := NewWithConfig(cfg)
	world.Reset(0)

	for id, base := range world.Bases() {
		c := world.Grid()[base.Y*cfg.Size+base.X]
		assert.Equal(t, siege.Cell{Alive: true, Owner: id}, c)
	}
}

func TestAdvanceSwapsBuffersAndCountsGenerations(t *testing.T) {
	world := NewWithConfig(smallConfig())
	world.Reset(0)

	before := world.Grid().Clone()
	want, err := siege.NewRules(32, world.ZoneRadius()).Step(before, world.Bases())
	require.NoError(t, err)

	require.NoError(t, world.Advance(context.Background()))

	assert.Equal(t, want, world.Grid())
	assert.Equal(t, uint64(1), world.Generation())
	assert.NoError(t, world.Err())
}

func TestParallelWorldMatchesSequential(t *testing.T) {
	seq := NewWithConfig(smallConfig())
	cfg := smallConfig()
	cfg.Workers = 4
	par := NewWithConfig(cfg)
	seq.Reset(0)
	par.Reset(0)

	for i := 0; i < 20; i++ {
		seq.Step()
		par.Step()
	}

	assert.Equal(t, seq.Grid(), par.Grid())
	assert.Equal(t, seq.Cells(), par.Cells())
}

func TestSingleOwnerWithoutBasesMatchesClassicLife(t *testing.T) {
	const size = 24
	reference := life.New(size, size)
	reference.Reset(5)

	world := New(size)
	for i, v := range reference.Cells() {
		if v == 1 {
			require.NoError(t, world.SetCell(i%size, i/size, siege.Cell{Alive: true, Owner: 1}))
		}
	}

	for gen := 0; gen < 30; gen++ {
		reference.Step()
		world.Step()
		for i, v := range reference.Cells() {
			require.Equal(t, v == 1, world.Grid()[i].Alive, "generation %d cell %d", gen+1, i)
		}
	}
}

func TestBaseMutations(t *testing.T) {
	world := New(16)

	require.NoError(t, world.PlaceBase(2, 3, 4))
	require.ErrorIs(t, world.PlaceBase(0, 1, 1), siege.ErrBaseID)
	require.ErrorIs(t, world.PlaceBase(3, 16, 1), siege.ErrBaseOutOfBounds)

	assert.Equal(t, siege.Bases{2: {X: 3, Y: 4}}, world.Bases())

	// the returned registry is a copy
	world.Bases()[5] = siege.BaseInfo{}
	assert.Len(t, world.Bases(), 1)

	assert.True(t, world.RemoveBase(2))
	assert.False(t, world.RemoveBase(2))
}

func TestStampPatternUpdatesDisplay(t *testing.T) {
	world := New(8)

	require.NoError(t, world.StampPattern("block", 6, 6, 3))
	require.ErrorIs(t, world.StampPattern("spinner", 0, 0, 1), siege.ErrUnknownPattern)
	require.ErrorIs(t, world.StampPattern("block", 0, 0, 42), siege.ErrOwnerRange)

	assert.Equal(t, 4, siege.CountAlive(world.Grid()))
	assert.Equal(t, siege.Cell{Alive: true, Owner: 3}, DecodeDisplayValue(world.Cells()[7*8+7]))
	assert.Equal(t, siege.Cell{}, DecodeDisplayValue(world.Cells()[0]))
}

func TestSiegeInWorld(t *testing.T) {
	world := NewWithConfig(Config{Size: 8, ZoneRadius: 1})
	require.NoError(t, world.StampPattern("blinker", 1, 1, 2))
	require.NoError(t, world.SetCell(2, 2, siege.Cell{Owner: 7}))
	require.NoError(t, world.PlaceBase(5, 2, 3))

	world.Step()

	require.NoError(t, world.Err())
	assert.Equal(t, siege.Cell{Owner: 7}, world.Grid()[2*8+2])
}

func TestRestore(t *testing.T) {
	world := New(8)
	cells := siege.NewGrid(8)
	cells[9] = siege.Cell{Alive: true, Owner: 4}

	require.NoError(t, world.Restore(12, cells, siege.Bases{4: {X: 1, Y: 1}}))
	assert.Equal(t, uint64(12), world.Generation())
	assert.Equal(t, cells, world.Grid())

	// the world keeps its own copy
	cells[9] = siege.Cell{}
	assert.True(t, world.Grid()[9].Alive)

	require.ErrorIs(t, world.Restore(0, siege.NewGrid(4), nil), siege.ErrGridSize)
	require.ErrorIs(t, world.Restore(0, siege.NewGrid(8), siege.Bases{11: {}}), siege.ErrBaseID)
}

func TestStepRecordsErrors(t *testing.T) {
	world := New(8)
	world.Grid()[3].Owner = siege.MaxPlayers + 1

	world.Step()

	require.ErrorIs(t, world.Err(), siege.ErrOwnerRange)
	assert.Zero(t, world.Generation())
}

func TestFromMap(t *testing.T) {
	cfg := FromMap(map[string]string{
		"size":        "48",
		"players":     "12",
		"zone_radius": "5",
		"density":     "0.5",
		"seed":        "-3",
		"workers":     "0",
		"soup_radius": "bogus",
	})

	assert.Equal(t, 48, cfg.Size)
	assert.Equal(t, siege.MaxPlayers, cfg.Players)
	assert.Equal(t, 5, cfg.ZoneRadius)
	assert.InDelta(t, 0.5, cfg.Density, 1e-9)
	assert.Equal(t, int64(-3), cfg.Seed)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, DefaultConfig().SoupRadius, cfg.SoupRadius)
}

func TestRegisteredAsSim(t *testing.T) {
	sim, err := core.New("siege", map[string]string{"size": "20"})
	require.NoError(t, err)

	assert.Equal(t, "siege", sim.Name())
	assert.Equal(t, core.Size{W: 20, H: 20}, sim.Size())
	assert.Len(t, sim.Cells(), 400)
}

func TestParameters(t *testing.T) {
	world := NewWithConfig(smallConfig())
	world.Reset(0)

	snap := world.Parameters()
	p, ok := snap.Lookup("zone_radius")
	require.True(t, ok)
	assert.Equal(t, "3", p.Value)

	_, ok = snap.Lookup("player_3")
	assert.True(t, ok)

	assert.True(t, world.SetIntParameter("zone_radius", 100))
	assert.Equal(t, 16, world.ZoneRadius())
	assert.True(t, world.SetIntParameter("workers", 0))
	assert.Equal(t, 1, world.Config().Workers)
	assert.False(t, world.SetIntParameter("density", 1))
}

func TestPalette(t *testing.T) {
	world := New(4)
	palette := world.Palette()

	require.Len(t, palette, 2*(siege.MaxPlayers+1))
	assert.Equal(t, toRGBA(OwnerColor(3)), palette[encodeDisplayValue(siege.Cell{Alive: true, Owner: 3})])
	assert.NotEqual(t, palette[0], palette[3])
}
