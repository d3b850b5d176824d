// Package hub fans session events out to websocket clients.
//
// Each event is sent as a JSON envelope {"type": ..., "payload": ...}. The
// hub keeps the latest event of each type and replays them to a client when
// it connects, so a fresh page starts from the current state.
package hub

import "encoding/json"

// MessageType indicates the websocket frame format.
type MessageType int

const (
	// JSONMessage is sent as a text frame.
	JSONMessage MessageType = iota
	// BinaryMessage is sent as a binary frame (preview JPEGs).
	BinaryMessage
)

// Message is a frame queued for clients.
type Message struct {
	Type MessageType
	Data []byte

	// retainKey, when set, makes the hub replay this message to new clients.
	retainKey string
}

// Event is the JSON envelope for typed messages.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewBinaryMessage creates a binary message.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// NewEvent encodes payload in an Event envelope. The message is retained
// under eventType.
func NewEvent(eventType string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return Message{}, err
	}
	return Message{Type: JSONMessage, Data: data, retainKey: eventType}, nil
}
