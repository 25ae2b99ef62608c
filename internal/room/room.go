// Package room derives canonical conversation identifiers for one-to-one
// chats. Two participants always map to the same room regardless of who
// initiated the connection.
package room

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidIdentity is returned when a participant identifier cannot be parsed
var ErrInvalidIdentity = errors.New("invalid participant identity")

// Identity is a unique numeric identifier for an authenticated participant.
type Identity int64

// String returns the decimal representation of the identity.
func (id Identity) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseIdentity parses a string-encoded participant identity.
// Identities are positive integers assigned by the user service.
func ParseIdentity(s string) (Identity, error) {
	// No else needed: early return pattern (guard clause)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidIdentity)
	}

	n, err := strconv.ParseInt(s, 10, 64)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentity, s)
	}

	// No else needed: early return pattern (guard clause)
	if n <= 0 {
		return 0, fmt.Errorf("%w: must be positive, got %d", ErrInvalidIdentity, n)
	}

	return Identity(n), nil
}

// ID is a deterministic, order-independent key for a two-party conversation.
type ID string

// Derive returns the room ID for an unordered pair of identities.
// The pair is normalized by numeric ordering, so Derive(a, b) == Derive(b, a)
// and each unordered pair maps to exactly one room.
func Derive(a, b Identity) ID {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return ID(fmt.Sprintf("chat_%d_%d", lo, hi))
}
