package websocket

import (
	"fmt"
	"time"
)

// MessageType represents the type of WebSocket message using a custom enum type for better type safety
type MessageType string

// WebSocket message types - presence and typing signaling
const (
	// Typing signals, client -> server with a recipient, server -> client
	// with a sender
	MessageTypeTyping     MessageType = "typing"
	MessageTypeStopTyping MessageType = "stop-typing"

	// Presence transitions, broadcast to every connection
	MessageTypeUserOnline  MessageType = "user-online"
	MessageTypeUserOffline MessageType = "user-offline"

	// Error events
	MessageTypeError MessageType = "error"
)

// String returns the string representation of the MessageType
func (mt MessageType) String() string {
	return string(mt)
}

// IsValid checks if the MessageType is a valid enum value
func (mt MessageType) IsValid() bool {
	switch mt {
	case MessageTypeTyping, MessageTypeStopTyping,
		MessageTypeUserOnline, MessageTypeUserOffline, MessageTypeError:
		return true
	default:
		return false
	}
}

// IsSignal reports whether the type is a client-originated typing signal.
func (mt MessageType) IsSignal() bool {
	return mt == MessageTypeTyping || mt == MessageTypeStopTyping
}

// Base message structure with typed MessageType for better type safety
type Message struct {
	ID        string                 `json:"id"`
	Type      MessageType            `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
}

// Validate validates the message structure and type
func (m *Message) Validate() error {
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid message type: %s", m.Type)
	}
	if m.Data == nil {
		m.Data = make(map[string]interface{})
	}
	return nil
}

// Recipient returns the "to" field of an inbound typing signal.
func (m *Message) Recipient() string {
	to, _ := m.Data["to"].(string)
	return to
}

// NewMessage creates a new message with the specified type and data
func NewMessage(id string, msgType MessageType, data map[string]interface{}) *Message {
	if data == nil {
		data = make(map[string]interface{})
	}
	return &Message{
		ID:        id,
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

// NewSignalMessage creates the outbound rendering of a typing signal,
// carrying the sender instead of the recipient.
func NewSignalMessage(id string, msgType MessageType, from string) *Message {
	return NewMessage(id, msgType, map[string]interface{}{
		"from": from,
	})
}

// NewPresenceMessage creates a user-online or user-offline broadcast.
func NewPresenceMessage(id string, msgType MessageType, userID string) *Message {
	return NewMessage(id, msgType, map[string]interface{}{
		"user_id": userID,
	})
}

// NewErrorMessage creates an error message
func NewErrorMessage(id, code, message string) *Message {
	return NewMessage(id, MessageTypeError, map[string]interface{}{
		"code":    code,
		"message": message,
	})
}
