package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientMessageFromJSON(t *testing.T) {
	var msg ClientMessage
	assert.NoError(t, msg.FromJSON([]byte(`{"type": "ping"}`)))
	assert.Equal(t, "ping", msg.Type)

	assert.Error(t, msg.FromJSON([]byte(`not json`)))
}

func TestServerMessageToJSON(t *testing.T) {
	msg := ServerMessage{
		Type:    "notification",
		Event:   string(NotificationNoteShared),
		Payload: map[string]string{"note_id": "abc"},
	}

	data, err := msg.ToJSON()
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "notification", decoded["type"])
	assert.Equal(t, "NOTE_SHARED", decoded["event"])
}
