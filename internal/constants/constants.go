// Package constants provides centralized constant definitions for the chat relay.
// This eliminates magic numbers and strings throughout the codebase.
package constants

import "time"

// Timeouts for various operations
const (
	DefaultContextTimeout = 10 * time.Second // Standard database operations
	MessageSaveTimeout    = 5 * time.Second  // Persisting a single chat message
	MongoIndexTimeout     = 30 * time.Second // MongoDB index creation
	ShortTimeout          = 2 * time.Second  // Quick operations like health checks
	HealthCheckTimeout    = 2 * time.Second  // Health check operations
	ShutdownGracePeriod   = 10 * time.Second // Draining sessions on shutdown
)

// Sizes and Limits
const (
	DefaultMaxMessageSize     = 1048576 // 1MB in bytes for WebSocket frames
	DefaultSendBuffer         = 256     // Outbound frames buffered per session
	DefaultHistoryLimit       = 50      // Default number of messages returned by history queries
	MaxHistoryLimit           = 500     // Maximum messages per history query (performance cap)
	DefaultConnectionsPerUser = 8       // Concurrent sessions allowed per authenticated user
	MaxUsersTracked           = 100000  // Maximum distinct users in the connection limiter map
	PublicEndpointRate        = 60      // Requests per minute for public endpoints (healthz, readyz, metrics)
	MaxRetryAttempts          = 3       // Maximum retry attempts for transient errors
)

// HTTP Server Timeouts (for standalone server mode)
const (
	HTTPReadTimeout  = 15 * time.Second  // Maximum time to read the entire request
	HTTPWriteTimeout = 60 * time.Second  // Maximum time to write the response
	HTTPIdleTimeout  = 120 * time.Second // Maximum time to keep idle connections alive
)

// Durations for background operations
const (
	DefaultRateWindow      = 1 * time.Minute // Rate limiting window
	DefaultCleanupInterval = 5 * time.Minute // Cleanup goroutine interval
	InitialRetryDelay      = 100 * time.Millisecond
	MaxRetryDelay          = 2 * time.Second
	RetryMultiplier        = 2.0
)

// WebSocket timing
const (
	WriteWait  = 10 * time.Second // Deadline for a single outbound frame write
	PongWait   = 60 * time.Second // Read deadline extension after each pong
	PingPeriod = (PongWait * 9) / 10
)

// Default Configuration Values
const (
	DefaultMongoURI   = "mongodb://localhost:27017"
	DefaultDatabase   = "chat"
	DefaultCollection = "chat_messages"
	DefaultPort       = 8080
	DefaultLogLevel   = "info"
	DefaultLogDir     = "logs"
	DefaultPathPrefix = "/chatrelay" // Default HTTP path prefix for all routes
)

// HTTP Headers and query parameters
const (
	HeaderAuthorization = "Authorization"
	HeaderRetryAfter    = "Retry-After"
	BearerPrefix        = "Bearer "
	QueryParamToken     = "token"
	QueryParamRecipient = "recipient"
)

// Error Messages (client-facing; deliberately vague for auth failures)
const (
	ErrMsgUnauthorized      = "Invalid or missing credentials"
	ErrMsgInvalidRecipient  = "Invalid or missing recipient"
	ErrMsgInternalError     = "Internal server error"
	ErrMsgRateLimitExceeded = "Too many requests. Please try again later."
	ErrMsgTooManySessions   = "Connection limit reached"
)

// MongoDB Field Names (BSON tags)
const (
	MongoFieldID       = "_id"
	MongoFieldSender   = "sender"
	MongoFieldReceiver = "receiver"
	MongoFieldRoom     = "room"
	MongoFieldBody     = "body"
	MongoFieldSentAt   = "ts"
)

// MongoDB Index Names
const (
	IndexRoomSentAt = "idx_room_sent_at"
	IndexSender     = "idx_sender"
)

// Weak Secrets for validation (security check)
var WeakSecrets = []string{
	"secret", "test", "test123", "password", "admin",
	"changeme", "default", "example", "demo", "12345",
	"placeholder",
}

// Minimum Security Requirements
const (
	MinJWTSecretLength = 32 // Minimum length for JWT secret (256 bits)
)

// Retry After Calculation
const (
	MillisecondsPerSecond = 1000
	MinRetryAfterSeconds  = 1 // Minimum retry-after value in seconds
)

// Network configuration defaults
const (
	DefaultTrustedProxies         = "10.0.0.0/8,172.16.0.0/12,192.168.0.0/16"
	DefaultMetricsAllowedNetworks = "10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8"
)
