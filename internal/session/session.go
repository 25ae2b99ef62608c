// Package session implements the per-connection state machine governing
// admission, message intake, and teardown of one physical WebSocket
// connection. A session is owned exclusively by the connection goroutine
// that accepted it; the broadcast bus holds only a non-owning reference and
// pushes payloads through TrySend.
package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/real-rm/gohelper"
	"github.com/real-rm/golog"

	"github.com/real-rm/chatrelay/internal/room"
)

// ErrInvalidTransition is returned when a lifecycle method is called from a
// state it is not legal in.
var ErrInvalidTransition = errors.New("invalid session state transition")

// State is the lifecycle state of a session.
//
// Connecting -> Authenticated -> Joined -> Closed
//      \-> Rejected
//
// Rejected is terminal and reachable only from Connecting; Closed is
// terminal and reachable from Authenticated and Joined. Inbound application
// messages are accepted only in Joined.
type State int32

const (
	// StateConnecting is the initial state: no identity, no room.
	StateConnecting State = iota
	// StateAuthenticated means the token validator produced an identity.
	StateAuthenticated
	// StateJoined means the session holds a room subscription and accepts traffic.
	StateJoined
	// StateClosed is terminal: membership revoked, no further delivery.
	StateClosed
	// StateRejected is terminal: admission failed, nothing was allocated.
	StateRejected
)

// String returns a human-readable state name for logging.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticated:
		return "authenticated"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// Options configures connection handling for a session.
type Options struct {
	ReadLimit  int64         // Maximum inbound frame size in bytes
	PongWait   time.Duration // Time allowed to read the next pong
	PingPeriod time.Duration // Heartbeat interval (must be less than PongWait)
	WriteWait  time.Duration // Time allowed to write one frame
	SendBuffer int           // Outbound channel capacity
}

// DefaultOptions returns the connection tuning used in production.
func DefaultOptions() Options {
	pongWait := 60 * time.Second
	return Options{
		ReadLimit:  1048576, // 1MB
		PongWait:   pongWait,
		PingPeriod: (pongWait * 9) / 10,
		WriteWait:  10 * time.Second,
		SendBuffer: 256,
	}
}

// Session represents one live connection.
type Session struct {
	// ID uniquely identifies this connection for logging and registry keys.
	ID string

	conn *websocket.Conn
	opts Options

	// send is the buffered channel for outbound payloads; the write pump is
	// its sole consumer.
	send chan []byte

	// closing is set before send is closed to prevent send-on-closed-channel
	// panics from concurrent TrySend calls.
	closing atomic.Bool

	// state, userID and roomID are written only by the owning connection
	// goroutine; mu makes them safe to read from others (logging, tests).
	mu     sync.RWMutex
	state  State
	userID room.Identity
	roomID room.ID

	closeOnce sync.Once
	logger    *golog.Logger
}

// New creates a session in the Connecting state wrapping an upgraded
// WebSocket connection.
func New(conn *websocket.Conn, logger *golog.Logger, opts Options) *Session {
	connID, err := gohelper.GenUUID(32)
	// No else needed: fallback logic for rare error case
	if err != nil {
		connID = fmt.Sprintf("conn-%d", time.Now().UnixNano())
	}

	s := &Session{
		ID:     connID,
		conn:   conn,
		opts:   opts,
		send:   make(chan []byte, opts.SendBuffer),
		state:  StateConnecting,
		logger: logger.WithGroup("session"),
	}

	// No else needed: conn is nil only in unit tests driving the state machine
	if conn != nil {
		conn.SetReadLimit(opts.ReadLimit)
		conn.SetReadDeadline(time.Now().Add(opts.PongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(opts.PongWait))
			return nil
		})
	}

	return s
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// UserID returns the authenticated identity. Zero until Authenticated.
func (s *Session) UserID() room.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Room returns the joined room ID. Empty until Joined.
func (s *Session) Room() room.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roomID
}

// Authenticate moves Connecting -> Authenticated, binding the identity the
// token validator produced. The identity is immutable for the session's
// lifetime.
func (s *Session) Authenticate(id room.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// No else needed: early return pattern (guard clause)
	if s.state != StateConnecting {
		return fmt.Errorf("%w: authenticate from %s", ErrInvalidTransition, s.state)
	}

	s.state = StateAuthenticated
	s.userID = id
	return nil
}

// Join moves Authenticated -> Joined, binding the room the session is
// subscribed to. The caller subscribes the session to the bus first; Join
// records the membership so teardown can revoke it.
func (s *Session) Join(id room.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// No else needed: early return pattern (guard clause)
	if s.state != StateAuthenticated {
		return fmt.Errorf("%w: join from %s", ErrInvalidTransition, s.state)
	}

	s.state = StateJoined
	s.roomID = id
	return nil
}

// Reject moves Connecting -> Rejected and closes the connection without any
// payload. No membership exists yet, so there is nothing to revoke.
func (s *Session) Reject() error {
	s.mu.Lock()
	// No else needed: early return pattern (guard clause)
	if s.state != StateConnecting {
		s.mu.Unlock()
		return fmt.Errorf("%w: reject from %s", ErrInvalidTransition, s.state)
	}
	s.state = StateRejected
	s.mu.Unlock()

	s.shutdown()
	return nil
}

// Close moves the session to Closed and releases the connection. It is
// idempotent: closing an already-closed (or rejected) session is a no-op,
// which also covers sessions that never reached Joined and hold no room.
func (s *Session) Close() {
	s.mu.Lock()
	// No else needed: optional operation (terminal states stay terminal)
	if s.state != StateRejected {
		s.state = StateClosed
	}
	s.mu.Unlock()

	s.shutdown()
}

// shutdown marks the session closing, wakes the write pump and closes the
// underlying connection. Safe to call multiple times.
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		close(s.send)
		// No else needed: conn is nil only in unit tests
		if s.conn != nil {
			s.conn.Close()
		}
	})
}

// TrySend queues data for delivery without blocking. Returns false if the
// session is closing or its buffer is full; the bus treats that as a skipped
// delivery, never as a fatal error.
func (s *Session) TrySend(data []byte) bool {
	if s.closing.Load() {
		return false
	}
	select {
	case s.send <- data:
		return true
	default:
		return false
	}
}

// ReadPayload blocks until the next text payload arrives from the client.
// The returned error is terminal: the caller must tear the session down.
func (s *Session) ReadPayload() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WritePump writes queued payloads to the connection and sends periodic
// pings. It exits when the send channel is closed or a write fails, closing
// the connection on the way out. Run it on its own goroutine; it is the only
// writer to the connection after the join confirmation.
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		// No else needed: conn is nil only in unit tests
		if s.conn != nil {
			s.conn.Close()
		}
	}()

	for {
		select {
		case data, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))

			// No else needed: channel closed handling (sends close and returns)
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Each payload is one text frame so clients can JSON-parse
			// frames independently.
			// No else needed: error handling with return (exits function)
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
			// No else needed: error handling with return (exits function)
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// WriteDirect writes data as a single frame, bypassing the send queue. Used
// only for the join confirmation, before the write pump takes ownership of
// the connection.
func (s *Session) WriteDirect(data []byte) error {
	s.conn.SetWriteDeadline(time.Now().Add(s.opts.WriteWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
