package siege

import (
	"errors"
	"fmt"

	"siege-ca/internal/core"
)

var (
	ErrGridSize        = errors.New("grid length does not match size")
	ErrOwnerRange      = errors.New("owner id out of range")
	ErrBaseID          = errors.New("base player id out of range")
	ErrBaseOutOfBounds = errors.New("base position outside grid")
	ErrAliasedBuffers  = errors.New("step source and destination share memory")
	ErrUnknownPattern  = errors.New("unknown pattern")
)

// ValidateGrid checks the length of grid against size and every owner id.
func ValidateGrid(grid Grid, size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: size %d", ErrGridSize, size)
	}
	if len(grid) != size*size {
		return fmt.Errorf("%w: got %d cells, want %d", ErrGridSize, len(grid), size*size)
	}
	for i, c := range grid {
		if c.Owner > MaxPlayers {
			return fmt.Errorf("%w: owner %d at index %d", ErrOwnerRange, c.Owner, i)
		}
	}
	return nil
}

// ValidateBases checks every player id and base position.
func ValidateBases(bases Bases, size int) error {
	for id, base := range bases {
		if err := ValidateBase(id, base, size); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBase checks a single registry entry.
func ValidateBase(id uint8, base BaseInfo, size int) error {
	if id == 0 || id > MaxPlayers {
		return fmt.Errorf("%w: %d", ErrBaseID, id)
	}
	if !(core.Torus{N: size}).Contains(base.X, base.Y) {
		return fmt.Errorf("%w: player %d at (%d,%d)", ErrBaseOutOfBounds, id, base.X, base.Y)
	}
	return nil
}

// ValidateOwner rejects owner ids above MaxPlayers.
func ValidateOwner(owner uint8) error {
	if owner > MaxPlayers {
		return fmt.Errorf("%w: %d", ErrOwnerRange, owner)
	}
	return nil
}
