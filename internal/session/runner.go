// Package session drives one siege world: it ticks generations at a fixed
// rate, applies queued commands between them, and fans results out to
// spectators, a statistics recorder and a snapshot store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"siege-ca/internal/core"
	"siege-ca/internal/siege"
	"siege-ca/internal/sims/siegelife"
	"siege-ca/internal/store"
)

var ErrNoStore = errors.New("session has no snapshot store")

type Publisher interface {
	Publish(frame Frame)
}

type Recorder interface {
	Record(session string, generation uint64, owners map[uint8]siege.OwnerCount) error
}

type SnapshotStore interface {
	Save(ctx context.Context, snap store.Snapshot) error
	Load(ctx context.Context, id string) (store.Snapshot, error)
}

type Options struct {
	// ID names the session; a random uuid is used when empty.
	ID  string
	TPS int
	// SnapshotEvery saves a snapshot each N generations. Zero saves only on shutdown.
	SnapshotEvery int
	Paused        bool

	Publisher Publisher
	Recorder  Recorder
	Store     SnapshotStore
	Logger    *slog.Logger
}

// Runner owns a world. Run, Tick and Apply must be called from one goroutine;
// other goroutines talk to it through Submit.
type Runner struct {
	id     string
	world  *siegelife.World
	opts   Options
	logger *slog.Logger

	commands chan Command
	paused   bool
}

func New(world *siegelife.World, opts Options) *Runner {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.TPS <= 0 {
		opts.TPS = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Runner{
		id:       opts.ID,
		world:    world,
		opts:     opts,
		logger:   logger.With("component", "session", "session", opts.ID),
		commands: make(chan Command, 64),
		paused:   opts.Paused,
	}
}

func (that *Runner) ID() string { return that.id }

func (that *Runner) Paused() bool { return that.paused }

func (that *Runner) World() *siegelife.World { return that.world }

// SetPublisher replaces the frame sink. Call it before Run.
func (that *Runner) SetPublisher(p Publisher) { that.opts.Publisher = p }

// Submit queues a command for the next tick. It blocks while the queue is
// full until ctx is done.
func (that *Runner) Submit(ctx context.Context, cmd Command) error {
	if err := cmd.validate(); err != nil {
		return err
	}
	select {
	case that.commands <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Apply executes a command immediately. A step command advances one
// generation even when paused.
func (that *Runner) Apply(ctx context.Context, cmd Command) error {
	if err := cmd.validate(); err != nil {
		return err
	}

	switch cmd.Kind {
	case CmdPause:
		that.paused = true
	case CmdResume:
		that.paused = false
	case CmdStep:
		return that.advance(ctx)
	default:
		if err := cmd.apply(that.world); err != nil {
			return fmt.Errorf("apply %s: %w", cmd.Kind, err)
		}
	}

	that.publish()
	return nil
}

// Tick advances one generation unless the session is paused.
func (that *Runner) Tick(ctx context.Context) error {
	if that.paused {
		return nil
	}
	return that.advance(ctx)
}

// Run ticks until ctx is cancelled, then saves a final snapshot.
func (that *Runner) Run(ctx context.Context) error {
	log := that.logger.With("method", "Run")

	interval := core.NewFixedStep(that.opts.TPS).Interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("session started", "tps", that.opts.TPS, "generation", that.world.Generation())
	that.publish()

	for {
		select {
		case <-ctx.Done():
			log.Info("session stopping", "generation", that.world.Generation())
			return that.shutdown()
		case cmd := <-that.commands:
			if err := that.Apply(ctx, cmd); err != nil {
				log.Warn("command rejected", "kind", cmd.Kind, "error", err)
			}
		case <-ticker.C:
			if err := that.Tick(ctx); err != nil {
				if ctx.Err() != nil {
					return that.shutdown()
				}
				return err
			}
		}
	}
}

// Resume replaces the world with the stored snapshot id and adopts that id.
func (that *Runner) Resume(ctx context.Context, id string) error {
	if that.opts.Store == nil {
		return ErrNoStore
	}

	snap, err := that.opts.Store.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("load snapshot %s: %w", id, err)
	}
	if snap.Size != that.world.Config().Size {
		return fmt.Errorf("%w: snapshot size %d, world size %d", siege.ErrGridSize, snap.Size, that.world.Config().Size)
	}

	that.world.SetZoneRadius(snap.ZoneRadius)
	if err = that.world.Restore(snap.Generation, snap.Cells, snap.Bases); err != nil {
		return err
	}

	that.id = snap.ID
	that.logger = that.logger.With("session", snap.ID)
	that.logger.Info("session resumed", "generation", snap.Generation)
	that.publish()
	return nil
}

// Snapshot copies the current world state.
func (that *Runner) Snapshot() store.Snapshot {
	return store.Snapshot{
		ID:         that.id,
		Size:       that.world.Config().Size,
		ZoneRadius: that.world.ZoneRadius(),
		Generation: that.world.Generation(),
		Cells:      that.world.Grid().Clone(),
		Bases:      that.world.Bases(),
		SavedAt:    time.Now().UTC(),
	}
}

// Frame copies the current generation for spectators.
func (that *Runner) Frame() Frame {
	stats := that.world.Stats()
	return Frame{
		Session:    that.id,
		Generation: stats.Generation,
		Size:       that.world.Config().Size,
		ZoneRadius: that.world.ZoneRadius(),
		Cells:      that.world.Grid().Clone(),
		Bases:      that.world.Bases(),
		Alive:      stats.Alive,
		Owners:     stats.Owners,
		Paused:     that.paused,
	}
}

func (that *Runner) advance(ctx context.Context) error {
	if err := that.world.Advance(ctx); err != nil {
		return err
	}

	frame := that.Frame()
	if that.opts.Publisher != nil {
		that.opts.Publisher.Publish(frame)
	}

	if that.opts.Recorder != nil {
		if err := that.opts.Recorder.Record(that.id, frame.Generation, frame.Owners); err != nil {
			that.logger.Error("could not record generation", "generation", frame.Generation, "error", err)
		}
	}

	every := uint64(that.opts.SnapshotEvery)
	if every > 0 && frame.Generation%every == 0 {
		if err := that.save(ctx); err != nil {
			that.logger.Error("could not save snapshot", "generation", frame.Generation, "error", err)
		}
	}
	return nil
}

func (that *Runner) publish() {
	if that.opts.Publisher != nil {
		that.opts.Publisher.Publish(that.Frame())
	}
}

func (that *Runner) save(ctx context.Context) error {
	if that.opts.Store == nil {
		return nil
	}
	snap := that.Snapshot()
	if err := that.opts.Store.Save(ctx, snap); err != nil {
		return err
	}
	that.logger.Debug("snapshot saved", "generation", snap.Generation)
	return nil
}

// shutdown stores the final state with a fresh context since the run
// context is already cancelled.
func (that *Runner) shutdown() error {
	if that.opts.Store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := that.save(ctx); err != nil {
		return fmt.Errorf("final snapshot: %w", err)
	}
	return nil
}
