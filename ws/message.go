package ws

import "encoding/json"

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON implements custom unmarshaling to capture the raw payload.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	// Unmarshal just the type field
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-Server message payloads ---

// AuthMsg optionally attaches a JWT so rounds are recorded under a user ID.
type AuthMsg struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// SetNameMsg is sent by the client to declare a display name and enter a room.
type SetNameMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// FlipMsg is sent by the client to flip a row, column or the diagonal.
// Index is the row or column index; it is ignored for DIAGONAL.
type FlipMsg struct {
	Type  string `json:"type"`
	Axis  string `json:"axis"`
	Index int    `json:"index"`
}

// NewRoundMsg asks the room for a fresh scrambled grid after a solve.
type NewRoundMsg struct {
	Type string `json:"type"`
}

// RejoinMsg is sent by the client to re-enter a room after reconnect or
// page refresh.
type RejoinMsg struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	RejoinToken string `json:"rejoinToken"`
	Name        string `json:"name"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoomJoinedMsg is sent when a player is seated in a room.
type RoomJoinedMsg struct {
	Type               string `json:"type"`
	RoomID             string `json:"roomId"`
	RejoinToken        string `json:"rejoinToken"`
	Rows               int    `json:"rows"`
	Cols               int    `json:"cols"`
	SuggestedFlipCount int    `json:"suggestedFlipCount"`
	MaxPlayers         int    `json:"maxPlayers"`
}
