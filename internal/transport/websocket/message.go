package websocket

import (
	"encoding/json"

	"siege-ca/internal/session"
)

const (
	actionFrame = "frame"
	actionError = "error"
	actionAck   = "ack"
)

type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// CommandPayload carries the arguments of a command action.
type CommandPayload struct {
	Player  uint8  `json:"player,omitempty"`
	X       int    `json:"x,omitempty"`
	Y       int    `json:"y,omitempty"`
	Pattern string `json:"pattern,omitempty"`
}

type ResponsePayload struct {
	Action string `json:"action"`
	Error  string `json:"error,omitempty"`
}

var commandActions = map[string]session.CommandKind{
	string(session.CmdPlaceBase):  session.CmdPlaceBase,
	string(session.CmdRemoveBase): session.CmdRemoveBase,
	string(session.CmdStamp):      session.CmdStamp,
	string(session.CmdPause):      session.CmdPause,
	string(session.CmdResume):     session.CmdResume,
	string(session.CmdStep):       session.CmdStep,
}

func encode(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Action: action, Payload: raw})
}
