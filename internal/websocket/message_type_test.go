package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageTypeIsValid(t *testing.T) {
	tests := []struct {
		msgType MessageType
		valid   bool
	}{
		{MessageTypeTyping, true},
		{MessageTypeStopTyping, true},
		{MessageTypeUserOnline, true},
		{MessageTypeUserOffline, true},
		{MessageTypeError, true},
		{MessageType("channel.message"), false},
		{MessageType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.msgType), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.msgType.IsValid())
		})
	}
}

func TestMessageTypeIsSignal(t *testing.T) {
	assert.True(t, MessageTypeTyping.IsSignal())
	assert.True(t, MessageTypeStopTyping.IsSignal())
	assert.False(t, MessageTypeUserOnline.IsSignal())
	assert.False(t, MessageTypeError.IsSignal())
}

func TestValidateRejectsUnknownType(t *testing.T) {
	msg := &Message{ID: "m1", Type: "bogus"}
	assert.Error(t, msg.Validate())
}

func TestValidateInitializesData(t *testing.T) {
	msg := &Message{ID: "m1", Type: MessageTypeTyping}
	assert.NoError(t, msg.Validate())
	assert.NotNil(t, msg.Data)
}

func TestRecipient(t *testing.T) {
	msg := NewMessage("m1", MessageTypeTyping, map[string]interface{}{"to": "u2"})
	assert.Equal(t, "u2", msg.Recipient())

	empty := NewMessage("m2", MessageTypeTyping, nil)
	assert.Equal(t, "", empty.Recipient())
}
