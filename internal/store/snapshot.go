package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"siege-ca/internal/siege"
)

var (
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrSnapshotID       = errors.New("snapshot id is empty")
)

const snapshotKeyPrefix = "siege:snapshot:"

// Snapshot is the persisted state of one session.
type Snapshot struct {
	ID         string      `json:"id"`
	Size       int         `json:"size"`
	ZoneRadius int         `json:"zone_radius"`
	Generation uint64      `json:"generation"`
	Cells      siege.Grid  `json:"cells"`
	Bases      siege.Bases `json:"bases"`
	SavedAt    time.Time   `json:"saved_at"`
}

// Validate checks the snapshot before it is written or restored.
func (s Snapshot) Validate() error {
	if s.ID == "" {
		return ErrSnapshotID
	}
	if err := siege.ValidateGrid(s.Cells, s.Size); err != nil {
		return err
	}
	return siege.ValidateBases(s.Bases, s.Size)
}

type SnapshotRepository interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context, id string) (Snapshot, error)
	Delete(ctx context.Context, id string) error
}

type redisSnapshots struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotRepository stores snapshots as JSON values. A zero ttl keeps
// them until deleted.
func NewSnapshotRepository(client *redis.Client, ttl time.Duration) SnapshotRepository {
	return &redisSnapshots{
		client: client,
		ttl:    ttl,
	}
}

func (that *redisSnapshots) Save(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("could not marshal snapshot: %w", err)
	}

	if err = that.client.Set(ctx, snapshotKeyPrefix+snap.ID, payload, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot: %w", err)
	}

	return nil
}

func (that *redisSnapshots) Load(ctx context.Context, id string) (Snapshot, error) {
	if id == "" {
		return Snapshot{}, ErrSnapshotID
	}

	response, err := that.client.Get(ctx, snapshotKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}

	var snap Snapshot
	if err = json.Unmarshal(response, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	if snap.Bases == nil {
		snap.Bases = siege.Bases{}
	}

	return snap, nil
}

func (that *redisSnapshots) Delete(ctx context.Context, id string) error {
	removed, err := that.client.Del(ctx, snapshotKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if removed == 0 {
		return ErrSnapshotNotFound
	}

	return nil
}
