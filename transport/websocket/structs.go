package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gridgame-backend/internal/entity"
	"github.com/rocketscienceinc/gridgame-backend/internal/gridgame"
)

// Message is the wire envelope: an action name and an action-specific payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ResponsePayload is sent back for every action. Geometry rides along on
// connect so clients can map pointer coordinates to cells the same way the
// server does.
type ResponsePayload struct {
	Player   *entity.Player     `json:"player,omitempty"`
	Game     *entity.Game       `json:"game,omitempty"`
	Geometry *gridgame.Geometry `json:"geometry,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type ConnectPayload struct {
	Player struct {
		ID string `json:"id"`
	} `json:"player"`
}

type JoinGamePayload struct {
	Game struct {
		ID string `json:"id"`
	} `json:"game"`
}

// TurnPayload carries raw pointer coordinates; the server resolves them to a
// cell through the shared geometry.
type TurnPayload struct {
	Pointer gridgame.PointerEvent `json:"pointer"`
}
