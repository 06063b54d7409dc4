package session

import (
	"errors"
	"fmt"

	"siege-ca/internal/siege"
	"siege-ca/internal/sims/siegelife"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandKind string

const (
	CmdPlaceBase  CommandKind = "base:place"
	CmdRemoveBase CommandKind = "base:remove"
	CmdStamp      CommandKind = "pattern:stamp"
	CmdPause      CommandKind = "pause"
	CmdResume     CommandKind = "resume"
	CmdStep       CommandKind = "step"
)

// Command is a change requested between generations.
type Command struct {
	Kind    CommandKind `json:"kind"`
	Player  uint8       `json:"player,omitempty"`
	X       int         `json:"x,omitempty"`
	Y       int         `json:"y,omitempty"`
	Pattern string      `json:"pattern,omitempty"`
}

// Frame is a self-contained copy of one generation for spectators.
type Frame struct {
	Session    string                      `json:"session"`
	Generation uint64                      `json:"generation"`
	Size       int                         `json:"size"`
	ZoneRadius int                         `json:"zone_radius"`
	Cells      siege.Grid                  `json:"cells"`
	Bases      siege.Bases                 `json:"bases"`
	Alive      int                         `json:"alive"`
	Owners     map[uint8]siege.OwnerCount `json:"owners"`
	Paused     bool                        `json:"paused"`
}

func (c Command) validate() error {
	switch c.Kind {
	case CmdPlaceBase, CmdRemoveBase:
		if c.Player < 1 || c.Player > siege.MaxPlayers {
			return fmt.Errorf("%w: %d", siege.ErrBaseID, c.Player)
		}
	case CmdStamp:
		if c.Pattern == "" {
			return fmt.Errorf("%w: empty name", siege.ErrUnknownPattern)
		}
		return siege.ValidateOwner(c.Player)
	case CmdPause, CmdResume, CmdStep:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Kind)
	}
	return nil
}

// apply mutates the world for every kind except pause/resume/step, which the
// runner handles itself.
func (c Command) apply(w *siegelife.World) error {
	switch c.Kind {
	case CmdPlaceBase:
		return w.PlaceBase(c.Player, c.X, c.Y)
	case CmdRemoveBase:
		w.RemoveBase(c.Player)
		return nil
	case CmdStamp:
		return w.StampPattern(c.Pattern, c.X, c.Y, c.Player)
	}
	return nil
}
