package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"siege-ca/internal/siege"
	"siege-ca/internal/sims/siegelife"
	"siege-ca/internal/store"
)

type framesSink struct {
	mu     sync.Mutex
	frames []Frame
}

func (f *framesSink) Publish(frame Frame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
}

func (f *framesSink) last() (Frame, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.frames) == 0 {
		return Frame{}, false
	}
	return f.frames[len(f.frames)-1], true
}

type recorded struct {
	session    string
	generation uint64
}

type memRecorder struct {
	mu   sync.Mutex
	rows []recorded
}

func (m *memRecorder) Record(session string, generation uint64, _ map[uint8]siege.OwnerCount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, recorded{session: session, generation: generation})
	return nil
}

type memStore struct {
	mu    sync.Mutex
	snaps map[string]store.Snapshot
	saves []uint64
}

func newMemStore() *memStore {
	return &memStore{snaps: map[string]store.Snapshot{}}
}

func (m *memStore) Save(_ context.Context, snap store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps[snap.ID] = snap
	m.saves = append(m.saves, snap.Generation)
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[id]
	if !ok {
		return store.Snapshot{}, store.ErrSnapshotNotFound
	}
	return snap, nil
}

func (m *memStore) saved() []uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]uint64(nil), m.saves...)
}

func newWorld(t *testing.T) *siegelife.World {
	t.Helper()
	cfg := siegelife.DefaultConfig()
	cfg.Size = 24
	cfg.Players = 2
	cfg.SoupRadius = 3
	cfg.Seed = 11
	w := siegelife.NewWithConfig(cfg)
	w.Reset(0)
	return w
}

func TestNewAssignsID(t *testing.T) {
	r := New(newWorld(t), Options{})
	_, err := uuid.Parse(r.ID())
	require.NoError(t, err)

	named := New(newWorld(t), Options{ID: "arena"})
	assert.Equal(t, "arena", named.ID())
}

func TestTickPublishesRecordsAndSnapshots(t *testing.T) {
	// Given
	sink := &framesSink{}
	rec := &memRecorder{}
	st := newMemStore()
	r := New(newWorld(t), Options{ID: "s1", SnapshotEvery: 2, Publisher: sink, Recorder: rec, Store: st})
	ctx := context.Background()

	// When
	for range 4 {
		require.NoError(t, r.Tick(ctx))
	}

	// Then
	assert.Equal(t, uint64(4), r.World().Generation())
	assert.Len(t, sink.frames, 4)
	last, ok := sink.last()
	require.True(t, ok)
	assert.Equal(t, uint64(4), last.Generation)
	assert.Equal(t, "s1", last.Session)
	assert.Equal(t, siege.CountAlive(last.Cells), last.Alive)
	assert.Equal(t, []recorded{{"s1", 1}, {"s1", 2}, {"s1", 3}, {"s1", 4}}, rec.rows)
	assert.Equal(t, []uint64{2, 4}, st.saved())
}

func TestFrameIsACopy(t *testing.T) {
	r := New(newWorld(t), Options{})
	frame := r.Frame()
	frame.Cells[0] = siege.Cell{Alive: true, Owner: 9}
	frame.Bases[9] = siege.BaseInfo{}

	assert.NotEqual(t, siege.Cell{Alive: true, Owner: 9}, r.World().Grid()[0])
	_, ok := r.World().Bases()[9]
	assert.False(t, ok)
}

func TestPauseResumeAndStep(t *testing.T) {
	r := New(newWorld(t), Options{})
	ctx := context.Background()

	require.NoError(t, r.Apply(ctx, Command{Kind: CmdPause}))
	require.True(t, r.Paused())
	require.NoError(t, r.Tick(ctx))
	assert.Equal(t, uint64(0), r.World().Generation())

	require.NoError(t, r.Apply(ctx, Command{Kind: CmdStep}))
	assert.Equal(t, uint64(1), r.World().Generation())
	assert.True(t, r.Paused())

	require.NoError(t, r.Apply(ctx, Command{Kind: CmdResume}))
	require.NoError(t, r.Tick(ctx))
	assert.Equal(t, uint64(2), r.World().Generation())
}

func TestApplyCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("place and remove base", func(t *testing.T) {
		r := New(newWorld(t), Options{})
		require.NoError(t, r.Apply(ctx, Command{Kind: CmdPlaceBase, Player: 5, X: 3, Y: 4}))
		assert.Equal(t, siege.BaseInfo{X: 3, Y: 4}, r.World().Bases()[5])

		require.NoError(t, r.Apply(ctx, Command{Kind: CmdRemoveBase, Player: 5}))
		_, ok := r.World().Bases()[5]
		assert.False(t, ok)
	})

	t.Run("stamp", func(t *testing.T) {
		r := New(newWorld(t), Options{})
		require.NoError(t, r.Apply(ctx, Command{Kind: CmdStamp, Player: 3, X: 10, Y: 10, Pattern: "block"}))
		grid := r.World().Grid()
		assert.Equal(t, siege.Cell{Alive: true, Owner: 3}, grid[10*24+10])
		assert.Equal(t, siege.Cell{Alive: true, Owner: 3}, grid[11*24+11])
	})

	t.Run("rejected", func(t *testing.T) {
		r := New(newWorld(t), Options{})
		require.ErrorIs(t, r.Apply(ctx, Command{Kind: CmdPlaceBase, Player: 0}), siege.ErrBaseID)
		require.ErrorIs(t, r.Apply(ctx, Command{Kind: CmdPlaceBase, Player: 2, X: 99}), siege.ErrBaseOutOfBounds)
		require.ErrorIs(t, r.Apply(ctx, Command{Kind: CmdStamp, Player: 1, Pattern: "spiral"}), siege.ErrUnknownPattern)
		require.ErrorIs(t, r.Apply(ctx, Command{Kind: CmdStamp, Player: 11, Pattern: "block"}), siege.ErrOwnerRange)
		require.ErrorIs(t, r.Apply(ctx, Command{Kind: "explode"}), ErrUnknownCommand)
		require.ErrorIs(t, r.Submit(ctx, Command{Kind: "explode"}), ErrUnknownCommand)
	})
}

func TestSubmitHonoursContext(t *testing.T) {
	r := New(newWorld(t), Options{})
	for range cap(r.commands) {
		require.NoError(t, r.Submit(context.Background(), Command{Kind: CmdPause}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, r.Submit(ctx, Command{Kind: CmdPause}), context.Canceled)
}

func TestRunAppliesCommandsAndSavesOnShutdown(t *testing.T) {
	// Given
	sink := &framesSink{}
	st := newMemStore()
	r := New(newWorld(t), Options{ID: "run", TPS: 500, Publisher: sink, Store: st})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// When
	require.NoError(t, r.Submit(ctx, Command{Kind: CmdPlaceBase, Player: 7, X: 1, Y: 1}))
	require.Eventually(t, func() bool {
		f, ok := sink.last()
		return ok && f.Generation >= 3 && f.Bases[7] == siege.BaseInfo{X: 1, Y: 1}
	}, 5*time.Second, 5*time.Millisecond)
	cancel()

	// Then
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}

	snap, err := st.Load(context.Background(), "run")
	require.NoError(t, err)
	assert.Equal(t, r.World().Generation(), snap.Generation)
	assert.Equal(t, siege.BaseInfo{X: 1, Y: 1}, snap.Bases[7])
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("restores snapshot", func(t *testing.T) {
		// Given
		source := New(newWorld(t), Options{ID: "saved"})
		for range 5 {
			require.NoError(t, source.Tick(ctx))
		}
		snap := source.Snapshot()
		snap.ZoneRadius = 1
		st := newMemStore()
		require.NoError(t, st.Save(ctx, snap))

		// When
		r := New(newWorld(t), Options{Store: st})
		require.NoError(t, r.Resume(ctx, "saved"))

		// Then
		assert.Equal(t, "saved", r.ID())
		assert.Equal(t, uint64(5), r.World().Generation())
		assert.Equal(t, 1, r.World().ZoneRadius())
		assert.Equal(t, snap.Cells, r.World().Grid())
		assert.Equal(t, snap.Bases, r.World().Bases())
	})

	t.Run("missing", func(t *testing.T) {
		r := New(newWorld(t), Options{Store: newMemStore()})
		require.ErrorIs(t, r.Resume(ctx, "nope"), store.ErrSnapshotNotFound)
	})

	t.Run("size mismatch", func(t *testing.T) {
		st := newMemStore()
		require.NoError(t, st.Save(ctx, store.Snapshot{ID: "big", Size: 4, Cells: siege.NewGrid(4), Bases: siege.Bases{}}))
		r := New(newWorld(t), Options{Store: st})
		require.ErrorIs(t, r.Resume(ctx, "big"), siege.ErrGridSize)
	})

	t.Run("no store", func(t *testing.T) {
		r := New(newWorld(t), Options{})
		require.ErrorIs(t, r.Resume(ctx, "x"), ErrNoStore)
	})
}
