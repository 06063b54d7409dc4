package siege

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(grid Grid, size, x, y int, owner uint8) {
	grid[y*size+x] = Cell{Alive: true, Owner: owner}
}

func aliveSet(grid Grid, size int) map[[2]int]uint8 {
	out := map[[2]int]uint8{}
	for i, c := range grid {
		if c.Alive {
			out[[2]int{i % size, i / size}] = c.Owner
		}
	}
	return out
}

func randomGrid(seed uint64, size int, players uint8) Grid {
	r := rand.New(rand.NewPCG(seed, 0))
	grid := NewGrid(size)
	for i := range grid {
		grid[i] = Cell{Alive: r.IntN(3) == 0, Owner: uint8(r.IntN(int(players) + 1))}
	}
	return grid
}

func TestStepPreservesLength(t *testing.T) {
	for _, size := range []int{1, 3, 8, 17} {
		grid := randomGrid(uint64(size), size, MaxPlayers)

		next, err := Step(grid, nil, size)

		require.NoError(t, err)
		assert.Len(t, next, len(grid))
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	grid := randomGrid(7, 12, 4)
	before := grid.Clone()

	_, err := Step(grid, Bases{1: {X: 2, Y: 2}}, 12)

	require.NoError(t, err)
	assert.Equal(t, before, grid)
}

func TestBirthTakesNeighbourOwner(t *testing.T) {
	const size = 8
	grid := NewGrid(size)
	set(grid, size, 1, 1, 2)
	set(grid, size, 2, 1, 2)
	set(grid, size, 3, 1, 2)

	next, err := Step(grid, nil, size)
	require.NoError(t, err)

	assert.Equal(t, map[[2]int]uint8{{2, 0}: 2, {2, 1}: 2, {2, 2}: 2}, aliveSet(next, size))
}

func TestLoneCellDiesKeepingOwner(t *testing.T) {
	const size = 6
	grid := NewGrid(size)
	set(grid, size, 3, 3, 5)

	next, err := Step(grid, nil, size)
	require.NoError(t, err)

	assert.Equal(t, Cell{Alive: false, Owner: 5}, next[3*size+3])
	assert.Zero(t, CountAlive(next))
	assert.Equal(t, OwnerCount{Alive: 0, Territory: 1}, CountByOwner(next)[5])
}

func TestBlockIsStillLife(t *testing.T) {
	const size = 6
	grid := NewGrid(size)
	block, err := LookupPattern("block")
	require.NoError(t, err)
	require.NoError(t, Stamp(grid, size, block, 2, 2, 3))

	cur := grid
	for gen := 0; gen < 5; gen++ {
		cur, err = Step(cur, nil, size)
		require.NoError(t, err)
		require.Equal(t, grid, cur, "generation %d", gen+1)
	}
}

func TestMajorityTieGoesToLowestID(t *testing.T) {
	const size = 6
	grid := NewGrid(size)
	set(grid, size, 1, 1, 6)
	set(grid, size, 2, 1, 2)
	set(grid, size, 3, 1, 9)

	next, err := Step(grid, nil, size)
	require.NoError(t, err)

	assert.Equal(t, Cell{Alive: true, Owner: 2}, next[2*size+2])
	assert.Equal(t, Cell{Alive: true, Owner: 2}, next[0*size+2])
	// survivor keeps its own owner
	assert.Equal(t, Cell{Alive: true, Owner: 2}, next[1*size+2])
}

func TestMajorityBeatsMinority(t *testing.T) {
	const size = 6
	grid := NewGrid(size)
	set(grid, size, 1, 1, 7)
	set(grid, size, 2, 1, 1)
	set(grid, size, 3, 1, 7)

	next, err := Step(grid, nil, size)
	require.NoError(t, err)

	assert.Equal(t, uint8(7), next[2*size+2].Owner)
}

func TestUnownedBirthKeepsTerritory(t *testing.T) {
	const size = 6
	grid := NewGrid(size)
	set(grid, size, 1, 1, 0)
	set(grid, size, 2, 1, 0)
	set(grid, size, 3, 1, 0)
	grid[2*size+2] = Cell{Owner: 8}

	next, err := Step(grid, nil, size)
	require.NoError(t, err)

	assert.Equal(t, Cell{Alive: true, Owner: 8}, next[2*size+2])
	assert.Equal(t, Cell{Alive: true, Owner: 0}, next[0*size+2])
}

func TestSiegeVetoesEnemyBirth(t *testing.T) {
	const size = 8
	rules := NewRules(size, 1)

	// Given: a blinker owned by player 2 whose lower birth cell lies in
	// player 5's zone and already belongs to player 7
	grid := NewGrid(size)
	set(grid, size, 1, 1, 2)
	set(grid, size, 2, 1, 2)
	set(grid, size, 3, 1, 2)
	grid[2*size+2] = Cell{Owner: 7}
	bases := Bases{5: {X: 2, Y: 3}}

	// When: the grid advances
	next, err := rules.Step(grid, bases)
	require.NoError(t, err)

	// Then: the protected birth is blocked and territory is untouched
	assert.Equal(t, Cell{Alive: false, Owner: 7}, next[2*size+2])
	assert.Equal(t, Cell{Alive: true, Owner: 2}, next[0*size+2])
}

func TestOwnZoneAllowsBirth(t *testing.T) {
	const size = 8
	rules := NewRules(size, 1)
	grid := NewGrid(size)
	set(grid, size, 1, 1, 2)
	set(grid, size, 2, 1, 2)
	set(grid, size, 3, 1, 2)

	next, err := rules.Step(grid, Bases{2: {X: 2, Y: 3}})
	require.NoError(t, err)

	assert.Equal(t, Cell{Alive: true, Owner: 2}, next[2*size+2])
}

func TestSiegeVetoesUnclaimedBirth(t *testing.T) {
	const size = 8
	rules := NewRules(size, 1)
	grid := NewGrid(size)
	set(grid, size, 1, 1, 0)
	set(grid, size, 2, 1, 0)
	set(grid, size, 3, 1, 0)

	next, err := rules.Step(grid, Bases{4: {X: 2, Y: 3}})
	require.NoError(t, err)

	assert.Equal(t, Cell{}, next[2*size+2])
}

func TestSiegeDoesNotKillSurvivors(t *testing.T) {
	const size = 8
	rules := NewRules(size, 2)
	grid := NewGrid(size)
	block, err := LookupPattern("block")
	require.NoError(t, err)
	require.NoError(t, Stamp(grid, size, block, 3, 3, 1))

	next, err := rules.Step(grid, Bases{9: {X: 4, Y: 4}})
	require.NoError(t, err)

	assert.Equal(t, grid, next)
}

func TestToroidalWraparound(t *testing.T) {
	const size = 5
	grid := NewGrid(size)
	// vertical blinker crossing the top/bottom edge in column 0
	set(grid, size, 0, size-1, 1)
	set(grid, size, 0, 0, 1)
	set(grid, size, 0, 1, 1)

	next, err := Step(grid, nil, size)
	require.NoError(t, err)

	// turns horizontal across the left/right edge in row 0
	assert.Equal(t, map[[2]int]uint8{{size - 1, 0}: 1, {0, 0}: 1, {1, 0}: 1}, aliveSet(next, size))
}

func TestGliderTravelsWithOwner(t *testing.T) {
	const size = 10
	glider, err := LookupPattern("glider")
	require.NoError(t, err)

	grid := NewGrid(size)
	require.NoError(t, Stamp(grid, size, glider, 8, 8, 4))

	cur := grid
	for i := 0; i < 4; i++ {
		cur, err = Step(cur, nil, size)
		require.NoError(t, err)
	}

	want := NewGrid(size)
	require.NoError(t, Stamp(want, size, glider, 9, 9, 4))
	assert.Equal(t, aliveSet(want, size), aliveSet(cur, size))

	counts := CountByOwner(cur)
	assert.Equal(t, 5, counts[4].Alive)
	assert.Greater(t, counts[4].Territory, counts[4].Alive)
}

func TestStepValidation(t *testing.T) {
	t.Run("wrong length", func(t *testing.T) {
		_, err := Step(make(Grid, 10), nil, 3)
		require.ErrorIs(t, err, ErrGridSize)
	})

	t.Run("zero size", func(t *testing.T) {
		_, err := Step(nil, nil, 0)
		require.ErrorIs(t, err, ErrGridSize)
	})

	t.Run("owner out of range", func(t *testing.T) {
		grid := NewGrid(4)
		grid[5].Owner = MaxPlayers + 1
		_, err := Step(grid, nil, 4)
		require.ErrorIs(t, err, ErrOwnerRange)
	})

	t.Run("base id", func(t *testing.T) {
		_, err := Step(NewGrid(4), Bases{0: {}}, 4)
		require.ErrorIs(t, err, ErrBaseID)

		_, err = Step(NewGrid(4), Bases{MaxPlayers + 1: {}}, 4)
		require.ErrorIs(t, err, ErrBaseID)
	})

	t.Run("base outside grid", func(t *testing.T) {
		_, err := Step(NewGrid(4), Bases{1: {X: 4, Y: 0}}, 4)
		require.ErrorIs(t, err, ErrBaseOutOfBounds)
	})

	t.Run("destination length", func(t *testing.T) {
		err := NewRules(4, 1).StepInto(make(Grid, 3), NewGrid(4), nil)
		require.ErrorIs(t, err, ErrGridSize)
	})

	t.Run("aliased buffers", func(t *testing.T) {
		grid := NewGrid(4)
		err := NewRules(4, 1).StepInto(grid, grid, nil)
		require.ErrorIs(t, err, ErrAliasedBuffers)
	})
}

func TestStepParallelMatchesSequential(t *testing.T) {
	const size = 33
	rules := NewRules(size, 2)
	bases := Bases{1: {X: 3, Y: 3}, 4: {X: 20, Y: 10}, 10: {X: 32, Y: 32}}
	grid := randomGrid(99, size, MaxPlayers)

	for _, workers := range []int{0, 1, 2, 3, 8, 64} {
		want, err := rules.Step(grid, bases)
		require.NoError(t, err)

		got := NewGrid(size)
		require.NoError(t, rules.StepParallel(context.Background(), got, grid, bases, workers))
		assert.Equal(t, want, got, "workers=%d", workers)
	}
}

func TestStepParallelHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewRules(16, 1).StepParallel(ctx, NewGrid(16), NewGrid(16), nil, 4)
	require.ErrorIs(t, err, context.Canceled)
}
