package models

import "encoding/json"

// ClientMessage is a message received from a WebSocket client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (m *ClientMessage) FromJSON(data []byte) error {
	return json.Unmarshal(data, m)
}

// ServerMessage is a message pushed to a WebSocket client.
type ServerMessage struct {
	Type    string      `json:"type"`
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

func (m *ServerMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}
