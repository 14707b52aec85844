package ws

import (
	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/types"
)

// Frame types
const (
	frameSub   = "sub"
	frameUnsub = "unsub"
	framePing  = "ping"
	framePong  = "pong"
	frameError = "error"
)

// frame is every message on the feed socket, in both directions. Session
// events use their kind ("added", "removed") as the type.
type frame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (f frame) event() (types.SessionEvent, bool) {
	switch kind := types.SessionEventKind(f.Type); kind {
	case types.SessionAdded, types.SessionRemoved:
		return types.SessionEvent{Kind: kind, SessionID: f.SessionID}, true
	default:
		return types.SessionEvent{}, false
	}
}

func eventFrame(ev types.SessionEvent) frame {
	return frame{Type: string(ev.Kind), SessionID: ev.SessionID}
}

func writeFrame(conn *websocket.Conn, f frame) error {
	data, err := sonic.Marshal(f)
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func readFrame(conn *websocket.Conn) (frame, error) {
	var f frame
	_, data, err := conn.ReadMessage()
	if err != nil {
		return f, err
	}
	err = sonic.Unmarshal(data, &f)
	return f, err
}
