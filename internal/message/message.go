// Package message defines the wire payloads exchanged over a relay
// connection: the inbound chat payload and the tagged outbound event kinds.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/real-rm/chatrelay/internal/room"
)

var (
	// ErrEmptyBody is returned when the message text is missing or blank
	ErrEmptyBody = errors.New("message body is empty")
	// ErrMissingReceiver is returned when the receiver identity is missing or invalid
	ErrMissingReceiver = errors.New("receiver identity is missing")
)

// Inbound is the client-to-server chat payload.
type Inbound struct {
	Body     string
	Receiver room.Identity
}

// inboundWire mirrors the JSON shape. Receiver arrives as a JSON number or a
// string-encoded integer depending on the client, so it is decoded leniently.
type inboundWire struct {
	Body     string          `json:"message"`
	Receiver json.RawMessage `json:"receiver"`
}

// DecodeInbound parses a raw client payload.
// It returns an error for malformed JSON or unparseable fields; use Validate
// to check the decoded payload's content.
func DecodeInbound(data []byte) (*Inbound, error) {
	var wire inboundWire
	// No else needed: early return pattern (guard clause)
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}

	in := &Inbound{Body: wire.Body}

	// No else needed: optional operation (receiver may be absent)
	if len(wire.Receiver) > 0 && string(wire.Receiver) != "null" {
		receiver, err := decodeIdentity(wire.Receiver)
		// No else needed: early return pattern (guard clause)
		if err != nil {
			return nil, err
		}
		in.Receiver = receiver
	}

	return in, nil
}

// Validate checks that the payload carries non-empty body text and a
// positive receiver identity.
func (p *Inbound) Validate() error {
	// No else needed: early return pattern (guard clause)
	if strings.TrimSpace(p.Body) == "" {
		return ErrEmptyBody
	}
	// No else needed: early return pattern (guard clause)
	if p.Receiver <= 0 {
		return ErrMissingReceiver
	}
	return nil
}

// decodeIdentity accepts a JSON number or a string-encoded integer.
func decodeIdentity(raw json.RawMessage) (room.Identity, error) {
	var asString string
	// No else needed: type-specific handling, falls through to numeric decode
	if err := json.Unmarshal(raw, &asString); err == nil {
		id, err := room.ParseIdentity(asString)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMissingReceiver, err)
		}
		return id, nil
	}

	var asNumber int64
	// No else needed: early return pattern (guard clause)
	if err := json.Unmarshal(raw, &asNumber); err != nil {
		return 0, fmt.Errorf("%w: receiver is neither a number nor a numeric string", ErrMissingReceiver)
	}
	// No else needed: early return pattern (guard clause)
	if asNumber <= 0 {
		return 0, fmt.Errorf("%w: receiver must be positive", ErrMissingReceiver)
	}
	return room.Identity(asNumber), nil
}

// EventKind tags an outbound event.
type EventKind string

const (
	// KindConnected confirms a successful join; sent exactly once per connection.
	KindConnected EventKind = "websocket_connected"
	// KindRelayed carries a chat message fanned out to room subscribers.
	KindRelayed EventKind = "chat_message"
)

// Event is an outbound payload. The concrete kinds are Connected and
// Relayed; the delivery path switches on Kind() exhaustively so a new kind
// cannot be forgotten silently.
type Event interface {
	Kind() EventKind
	Encode() ([]byte, error)
}

// Connected is sent to a client immediately after it joins its room.
type Connected struct {
	Room   room.ID
	UserID room.Identity
}

// Kind implements Event.
func (Connected) Kind() EventKind { return KindConnected }

// Encode renders the confirmation payload:
// {"type":"websocket_connected","room":<room>,"user_id":<id>}
func (e Connected) Encode() ([]byte, error) {
	return json.Marshal(struct {
		Type   EventKind     `json:"type"`
		Room   room.ID       `json:"room"`
		UserID room.Identity `json:"user_id"`
	}{
		Type:   KindConnected,
		Room:   e.Room,
		UserID: e.UserID,
	})
}

// Relayed is a chat message delivered to every subscriber of a room.
type Relayed struct {
	Body   string
	Sender room.Identity
}

// Kind implements Event.
func (Relayed) Kind() EventKind { return KindRelayed }

// Encode renders the relayed payload: {"message":<body>,"sender":<id>}
func (e Relayed) Encode() ([]byte, error) {
	return json.Marshal(struct {
		Body   string        `json:"message"`
		Sender room.Identity `json:"sender"`
	}{
		Body:   e.Body,
		Sender: e.Sender,
	})
}
