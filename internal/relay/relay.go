// Package relay provides WebSocket handling for one-to-one chat: JWT
// admission, room join, message persistence and fan-out to room members.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/real-rm/golog"

	"github.com/real-rm/chatrelay/internal/auth"
	"github.com/real-rm/chatrelay/internal/bus"
	"github.com/real-rm/chatrelay/internal/constants"
	relayerrors "github.com/real-rm/chatrelay/internal/errors"
	"github.com/real-rm/chatrelay/internal/message"
	"github.com/real-rm/chatrelay/internal/metrics"
	"github.com/real-rm/chatrelay/internal/ratelimit"
	"github.com/real-rm/chatrelay/internal/room"
	"github.com/real-rm/chatrelay/internal/session"
	"github.com/real-rm/chatrelay/internal/storage"
	"github.com/real-rm/chatrelay/internal/util"
)

// upgrader configures the WebSocket upgrade
// SECURITY: In production, this service MUST be deployed behind a reverse proxy
// (nginx, traefik, etc.) that terminates TLS/SSL connections, ensuring all
// WebSocket connections use the WSS (WebSocket Secure) protocol.
// The CheckOrigin function is configured per-handler instance.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler manages WebSocket admissions and active sessions
type Handler struct {
	validator      *auth.Validator
	store          storage.Store
	bus            *bus.Bus
	logger         *golog.Logger
	connLimiter    *ratelimit.ConnectionLimiter
	allowedOrigins map[string]bool
	opts           session.Options

	// sessions tracks active sessions by session ID
	sessions map[string]*session.Session
	mu       sync.RWMutex
}

// NewHandler creates a new relay handler
func NewHandler(validator *auth.Validator, store storage.Store, b *bus.Bus, logger *golog.Logger, opts session.Options) *Handler {
	return &Handler{
		validator:      validator,
		store:          store,
		bus:            b,
		logger:         logger.WithGroup("relay"),
		connLimiter:    ratelimit.NewConnectionLimiter(constants.DefaultConnectionsPerUser),
		allowedOrigins: make(map[string]bool),
		opts:           opts,
		sessions:       make(map[string]*session.Session),
	}
}

// SetAllowedOrigins configures the allowed origins for WebSocket connections
// If no origins are set, all origins are allowed (development mode)
func (h *Handler) SetAllowedOrigins(origins []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.allowedOrigins = make(map[string]bool)
	for _, origin := range origins {
		h.allowedOrigins[origin] = true
	}

	h.logger.Info("Configured allowed origins",
		"count", len(origins),
		"origins", origins)
}

// SetConnectionLimit replaces the per-user connection limiter. Call before
// the handler starts accepting connections; existing grants are not migrated.
func (h *Handler) SetConnectionLimit(maxPerUser int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connLimiter = ratelimit.NewConnectionLimiter(maxPerUser)
}

// IsOpenOrigin returns true when no allowed origins are configured,
// meaning all origins are accepted. Callers can use this to log security
// warnings at startup.
func (h *Handler) IsOpenOrigin() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.allowedOrigins) == 0
}

// checkOrigin validates the origin of a WebSocket upgrade request
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	h.mu.RLock()
	defer h.mu.RUnlock()

	// If no origins configured, allow all (development mode)
	if len(h.allowedOrigins) == 0 {
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	h.logger.Warn("Origin not allowed", "origin", origin)
	return false
}

// HandleWebSocket handles HTTP to WebSocket upgrade requests.
// Admission requires a valid JWT and a parseable recipient before the
// upgrade happens:
//  1. Extract the token from the query string (or Authorization header)
//  2. Validate the JWT and extract the caller's identity
//  3. Parse the recipient and derive the shared room
//  4. Upgrade, join the room and start the session pumps
//
// Rejection responses are deliberately vague: the client learns only that
// admission failed, never which check failed.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Extract token: query parameter is the primary transport (browser
	// WebSocket clients cannot set headers), Authorization header is the
	// fallback for non-browser clients.
	token := r.URL.Query().Get(constants.QueryParamToken)
	if token == "" {
		if headerToken, err := util.ExtractBearerToken(r.Header.Get(constants.HeaderAuthorization)); err == nil {
			token = headerToken
		}
	}

	// No else needed: early return pattern (guard clause)
	if token == "" {
		h.rejectAdmission(w, "missing_token", http.StatusUnauthorized, constants.ErrMsgUnauthorized)
		return
	}

	recipient, err := room.ParseIdentity(r.URL.Query().Get(constants.QueryParamRecipient))
	// No else needed: early return pattern (guard clause)
	if err != nil {
		h.rejectAdmission(w, "invalid_recipient", http.StatusBadRequest, constants.ErrMsgInvalidRecipient)
		return
	}

	// Validate JWT token
	claims, err := h.validator.ValidateToken(token)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		h.logger.Warn("JWT validation failed",
			"error", err,
			"component", "relay")
		h.rejectAdmission(w, "invalid_token", http.StatusUnauthorized, constants.ErrMsgUnauthorized)
		return
	}

	// Check connection limit
	// No else needed: early return pattern (guard clause)
	if !h.connLimiter.Allow(claims.UserID) {
		h.logger.Warn("Connection limit exceeded",
			"user_id", claims.UserID,
			"component", "relay")
		relayErr := relayerrors.ErrConnectionLimitExceeded(5000)
		w.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(relayErr.RetryAfter/constants.MillisecondsPerSecond))
		h.rejectAdmission(w, "connection_limit", http.StatusTooManyRequests, constants.ErrMsgTooManySessions)
		return
	}

	// Upgrade HTTP connection to WebSocket
	localUpgrader := upgrader
	localUpgrader.CheckOrigin = h.checkOrigin

	conn, err := localUpgrader.Upgrade(w, r, nil)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		util.LogError(h.logger, "relay", "upgrade connection", err)
		h.connLimiter.Release(claims.UserID)
		return
	}

	sess := session.New(conn, h.logger, h.opts)

	roomID, err := h.admit(sess, claims.UserID, recipient)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		util.LogError(h.logger, "relay", "admit session", err,
			"user_id", claims.UserID,
			"session_id", sess.ID)
		sess.Reject()
		h.connLimiter.Release(claims.UserID)
		return
	}

	h.register(sess)
	h.bus.Subscribe(roomID, sess)

	h.logger.Info("WebSocket connection established",
		"user_id", claims.UserID,
		"session_id", sess.ID,
		"room", roomID,
		"component", "relay")

	// Join confirmation goes out before the pumps start so it is always the
	// first frame the client sees.
	if err := h.sendConnected(sess, roomID, claims.UserID); err != nil {
		util.LogError(h.logger, "relay", "send join confirmation", err,
			"user_id", claims.UserID,
			"session_id", sess.ID)
		h.teardown(sess)
		return
	}

	// Start read and write pumps in goroutines with panic recovery
	util.SafeGo(h.logger, "writePump", sess.WritePump)
	util.SafeGo(h.logger, "readLoop", func() { h.readLoop(sess) })
}

// admit walks the session through its pre-join lifecycle and derives the room.
func (h *Handler) admit(sess *session.Session, user, recipient room.Identity) (room.ID, error) {
	if err := sess.Authenticate(user); err != nil {
		return "", err
	}

	roomID := room.Derive(user, recipient)
	if err := sess.Join(roomID); err != nil {
		return "", err
	}

	return roomID, nil
}

// sendConnected writes the join confirmation as the first outbound frame.
func (h *Handler) sendConnected(sess *session.Session, roomID room.ID, user room.Identity) error {
	data, err := encodeEvent(message.Connected{Room: roomID, UserID: user})
	if err != nil {
		return err
	}
	return sess.WriteDirect(data)
}

// rejectAdmission records the rejection and responds with a generic error.
func (h *Handler) rejectAdmission(w http.ResponseWriter, reason string, status int, msg string) {
	metrics.AdmissionRejects.WithLabelValues(reason).Inc()
	http.Error(w, msg, status)
}

// register adds a session to the active sessions map
func (h *Handler) register(sess *session.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[sess.ID] = sess
	metrics.ActiveConnections.Inc()

	h.logger.Info("Session registered",
		"user_id", sess.UserID(),
		"session_id", sess.ID,
		"total_sessions", len(h.sessions))
}

// unregister removes a session from the active sessions map.
// Returns false if the session was already removed, making teardown
// idempotent when both the read loop and shutdown race to clean up.
func (h *Handler) unregister(sess *session.Session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.sessions[sess.ID]; !exists {
		return false
	}

	delete(h.sessions, sess.ID)
	metrics.ActiveConnections.Dec()

	h.logger.Info("Session unregistered",
		"user_id", sess.UserID(),
		"session_id", sess.ID,
		"remaining_sessions", len(h.sessions))
	return true
}

// teardown detaches a session from the room and releases its resources.
// Safe to call more than once per session.
func (h *Handler) teardown(sess *session.Session) {
	// No else needed: early return pattern (already torn down)
	if !h.unregister(sess) {
		return
	}

	if roomID := sess.Room(); roomID != "" {
		h.bus.Unsubscribe(roomID, sess)
	}
	h.connLimiter.Release(sess.UserID())
	sess.Close()
}

// SessionCount returns the number of active sessions
func (h *Handler) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// readLoop reads inbound frames for one session until the connection drops.
// Each frame is decoded, validated, persisted and only then fanned out to
// the room. Malformed frames and persistence failures drop the single
// message; the connection survives.
func (h *Handler) readLoop(sess *session.Session) {
	defer func() {
		h.logger.Info("WebSocket connection closed",
			"user_id", sess.UserID(),
			"session_id", sess.ID,
			"component", "relay")
		h.teardown(sess)
	}()

	for {
		payload, err := sess.ReadPayload()
		// No else needed: error handling with break (exits loop)
		if err != nil {
			// No else needed: specific error handling (logs and continues to break)
			if errors.Is(err, websocket.ErrReadLimit) {
				h.logger.Warn("WebSocket message size limit exceeded",
					"user_id", sess.UserID(),
					"session_id", sess.ID,
					"limit", h.opts.ReadLimit,
					"component", "relay")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				util.LogError(h.logger, "relay", "handle unexpected close", err,
					"user_id", sess.UserID(),
					"session_id", sess.ID)
			} else {
				h.logger.Info("WebSocket connection closing",
					"user_id", sess.UserID(),
					"session_id", sess.ID,
					"component", "relay")
			}
			break
		}

		metrics.MessagesReceived.Inc()
		h.handleInbound(sess, payload)
	}
}

// handleInbound processes one inbound frame: decode, validate, persist, relay.
func (h *Handler) handleInbound(sess *session.Session, payload []byte) {
	inbound, err := message.DecodeInbound(payload)
	// No else needed: early return pattern (drop malformed frame)
	if err != nil {
		h.logger.Debug("Dropping malformed payload",
			"user_id", sess.UserID(),
			"session_id", sess.ID,
			"error", err)
		metrics.MessageErrors.Inc()
		return
	}

	// No else needed: early return pattern (drop invalid frame)
	if err := inbound.Validate(); err != nil {
		h.logger.Debug("Dropping invalid payload",
			"user_id", sess.UserID(),
			"session_id", sess.ID,
			"error", err)
		metrics.MessageErrors.Inc()
		return
	}

	// Persistence gates fan-out: a message that could not be stored is
	// never delivered.
	ctx, cancel := util.NewTimeoutContext(constants.MessageSaveTimeout)
	ctx = util.NewContextWithTraceID(ctx)
	err = h.store.SaveMessage(ctx, sess.UserID(), inbound.Receiver, inbound.Body)
	cancel()
	// No else needed: early return pattern (drop on persistence failure)
	if err != nil {
		util.LogError(h.logger, "relay", "persist message", err,
			"user_id", sess.UserID(),
			"session_id", sess.ID,
			"room", sess.Room(),
			"trace_id", util.TraceIDFromContext(ctx))
		return
	}

	data, err := encodeEvent(message.Relayed{Body: inbound.Body, Sender: sess.UserID()})
	// No else needed: early return pattern (guard clause)
	if err != nil {
		util.LogError(h.logger, "relay", "encode relayed event", err,
			"session_id", sess.ID)
		return
	}

	delivered := h.bus.Publish(sess.Room(), data)
	metrics.MessagesRelayed.Inc()

	h.logger.Debug("Message relayed",
		"user_id", sess.UserID(),
		"room", sess.Room(),
		"delivered", delivered)
}

// encodeEvent serializes an outbound event. The switch is exhaustive over
// the event variants; an unknown variant is a programming error surfaced
// at the call site rather than silently dropped on the wire.
func encodeEvent(ev message.Event) ([]byte, error) {
	switch ev.(type) {
	case message.Connected, message.Relayed:
		return ev.Encode()
	default:
		return nil, fmt.Errorf("unhandled event kind %q", ev.Kind())
	}
}

// Shutdown gracefully closes all active sessions.
// Deprecated: Use ShutdownWithContext instead
func (h *Handler) Shutdown() {
	h.ShutdownWithContext(context.Background())
}

// ShutdownWithContext gracefully closes all active sessions.
// It respects the context deadline and returns its error if exceeded.
func (h *Handler) ShutdownWithContext(ctx context.Context) error {
	h.logger.Info("Shutting down relay handler, closing all sessions")

	h.mu.Lock()
	sessions := make([]*session.Session, 0, len(h.sessions))
	for _, sess := range h.sessions {
		sessions = append(sessions, sess)
	}
	h.mu.Unlock()

	// Close sessions in parallel with context deadline
	var wg sync.WaitGroup
	for _, sess := range sessions {
		wg.Add(1)
		go func(s *session.Session) {
			defer wg.Done()
			h.logger.Info("Closing session",
				"user_id", s.UserID(),
				"session_id", s.ID)
			h.teardown(s)
		}(sess)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.bus.Drain()
		h.logger.Info("All sessions closed gracefully")
		return nil
	case <-ctx.Done():
		h.logger.Warn("Shutdown deadline exceeded, forcing closure",
			"remaining_sessions", len(sessions))
		return ctx.Err()
	}
}
