// Package chatrelay provides the main service registration for the chat
// relay. It integrates with gomain by implementing a Register function that
// sets up the WebSocket relay endpoint and its supporting HTTP surface.
package chatrelay

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/real-rm/chatrelay/internal/auth"
	"github.com/real-rm/chatrelay/internal/bus"
	"github.com/real-rm/chatrelay/internal/constants"
	"github.com/real-rm/chatrelay/internal/httperrors"
	"github.com/real-rm/chatrelay/internal/metrics"
	"github.com/real-rm/chatrelay/internal/ratelimit"
	"github.com/real-rm/chatrelay/internal/relay"
	"github.com/real-rm/chatrelay/internal/room"
	"github.com/real-rm/chatrelay/internal/session"
	"github.com/real-rm/chatrelay/internal/storage"
	"github.com/real-rm/chatrelay/internal/util"
	"github.com/real-rm/goconfig"
	"github.com/real-rm/golog"
	"github.com/real-rm/gomongo"
)

var (
	// Global references for graceful shutdown
	globalHandler       *relay.Handler
	globalPublicLimiter *ratelimit.RequestLimiter
	globalLogger        *golog.Logger
	shutdownMu          sync.Mutex
)

// Register registers the chat relay service with the gomain router.
// This function is called by gomain during service initialization.
//
// Parameters:
//   - r: Gin router for registering HTTP and WebSocket endpoints
//   - config: Configuration accessor for loading service settings
//   - logger: Logger for structured logging
//   - mongo: MongoDB client for message persistence
//
// Returns:
//   - error: Any error that occurred during registration
func Register(r *gin.Engine, config *goconfig.ConfigAccessor, logger *golog.Logger, mongo *gomongo.Mongo) error {
	// Create relay-specific logger
	relayLogger := logger.WithGroup("chatrelay")
	relayLogger.Info("Initializing chat relay service")

	// Validate critical configuration at startup
	// This ensures misconfigurations are caught before serving traffic
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		// Fall back to config file
		var err error
		jwtSecret, err = config.ConfigString("chatrelay.jwt_secret")
		// No else needed: early return pattern (guard clause)
		if err != nil {
			return fmt.Errorf("failed to get JWT secret: %w", err)
		}
		if containsPlaceholder(jwtSecret) {
			return fmt.Errorf("JWT_SECRET contains placeholder value — set a real secret before deploying")
		}
	}

	// Validate JWT secret strength
	// No else needed: early return pattern (guard clause)
	if err := validateJWTSecret(jwtSecret); err != nil {
		relayLogger.Error("Configuration validation failed", "error", err)
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	// Load and validate HTTP path prefix early to fail fast on configuration errors.
	// Priority: Environment variable > Config file > Default ("/chatrelay")
	var err error
	pathPrefix := os.Getenv("CHATRELAY_PATH_PREFIX")
	if pathPrefix == "" {
		// Fall back to config file
		pathPrefix, err = config.ConfigStringWithDefault("chatrelay.path_prefix", constants.DefaultPathPrefix)
		// No else needed: early return pattern (guard clause)
		if err != nil {
			return fmt.Errorf("failed to get path prefix: %w", err)
		}
	}
	// Validate path prefix format
	// No else needed: early return pattern (guard clause)
	if pathPrefix == "" {
		return fmt.Errorf("path prefix cannot be empty")
	}
	// No else needed: early return pattern (guard clause)
	if !strings.HasPrefix(pathPrefix, "/") {
		return fmt.Errorf("path prefix must start with '/' (got: %s)", pathPrefix)
	}

	// Load maximum message size for WebSocket connections
	// Priority: Environment variable > Config file
	// Default: 1MB (1048576 bytes)
	maxMessageSize := int64(constants.DefaultMaxMessageSize)
	// No else needed: optional operation (configuration loading with fallback)
	if maxSizeStr := os.Getenv("MAX_MESSAGE_SIZE"); maxSizeStr != "" {
		// Parse from environment variable
		var parsedSize int64
		// No else needed: optional operation (logging based on parse result)
		if _, err := fmt.Sscanf(maxSizeStr, "%d", &parsedSize); err == nil {
			maxMessageSize = parsedSize
			relayLogger.Info("Using MAX_MESSAGE_SIZE from environment", "size_bytes", maxMessageSize)
		} else {
			relayLogger.Warn("Invalid MAX_MESSAGE_SIZE environment variable, using default", "value", maxSizeStr, "default", maxMessageSize)
		}
	} else {
		// Try to load from config file
		// No else needed: optional operation (logging based on parse result)
		if configSizeStr, err := config.ConfigStringWithDefault("chatrelay.max_message_size", fmt.Sprintf("%d", constants.DefaultMaxMessageSize)); err == nil {
			var parsedSize int64
			// No else needed: optional operation (logging based on parse result)
			if _, parseErr := fmt.Sscanf(configSizeStr, "%d", &parsedSize); parseErr == nil {
				maxMessageSize = parsedSize
				relayLogger.Info("Using max_message_size from config", "size_bytes", maxMessageSize)
			} else {
				relayLogger.Warn("Invalid max_message_size in config, using default", "value", configSizeStr, "default", maxMessageSize)
			}
		} else {
			relayLogger.Info("Using default max_message_size", "size_bytes", maxMessageSize)
		}
	}

	// Load message collection placement, overridable for multi-tenant deployments
	dbName, err := config.ConfigStringWithDefault("chatrelay.database", constants.DefaultDatabase)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return fmt.Errorf("failed to get database name: %w", err)
	}
	collName, err := config.ConfigStringWithDefault("chatrelay.collection", constants.DefaultCollection)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return fmt.Errorf("failed to get collection name: %w", err)
	}

	// Create message store
	store := storage.NewMongoStore(mongo, dbName, collName, relayLogger)

	// Ensure MongoDB indexes are created for optimal query performance
	indexCtx, indexCancel := util.NewTimeoutContext(constants.MongoIndexTimeout)
	defer indexCancel()
	// No else needed: optional operation (non-critical index creation)
	if err := store.EnsureIndexes(indexCtx); err != nil {
		relayLogger.Warn("Failed to create MongoDB indexes", "error", err)
		// Don't fail startup - indexes can be created manually if needed
	}

	// Create JWT validator
	validator := auth.NewValidator(jwtSecret)

	// Create broadcast bus
	broadcastBus := bus.New(relayLogger)

	// Create WebSocket relay handler
	opts := session.DefaultOptions()
	opts.ReadLimit = maxMessageSize
	handler := relay.NewHandler(validator, store, broadcastBus, relayLogger, opts)

	// Per-user concurrent connection cap
	connLimit, err := config.ConfigIntWithDefault("chatrelay.connections_per_user", constants.DefaultConnectionsPerUser)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return fmt.Errorf("failed to get connections per user: %w", err)
	}
	// No else needed: early return pattern (guard clause)
	if err := util.ValidatePositive(connLimit, "chatrelay.connections_per_user"); err != nil {
		return err
	}
	handler.SetConnectionLimit(connLimit)

	// Create public endpoint rate limiter (per-IP, prevents abuse of healthz/readyz/metrics)
	publicLimiter := ratelimit.NewRequestLimiter(1*time.Minute, constants.PublicEndpointRate)

	// Configure allowed origins for WebSocket connections
	// SECURITY: When no origins are configured, ALL origins are accepted.
	// This is acceptable only in development. In production, always configure
	// allowed_origins to prevent cross-site WebSocket hijacking.
	allowedOriginsStr, err := config.ConfigStringWithDefault("chatrelay.allowed_origins", "")
	// No else needed: optional operation (configuration with fallback logging)
	if err == nil && allowedOriginsStr != "" {
		if containsPlaceholder(allowedOriginsStr) {
			return fmt.Errorf("chatrelay.allowed_origins contains placeholder value %q — set actual origins before deploying", allowedOriginsStr)
		}
		origins := strings.Split(allowedOriginsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		handler.SetAllowedOrigins(origins)
	} else {
		relayLogger.Warn("No allowed origins configured, allowing all origins (development mode)")
	}

	// Start background cleanup goroutines only after all validation is complete,
	// so we don't leak goroutines if Register() returns an error.
	publicLimiter.StartCleanup()

	// Store global references for graceful shutdown.
	// Stop any previously-registered instances to prevent goroutine leaks
	// when Register() is called multiple times (tests, hot-reload).
	shutdownMu.Lock()
	if globalPublicLimiter != nil {
		globalPublicLimiter.StopCleanup()
	}
	if globalHandler != nil {
		_ = globalHandler.ShutdownWithContext(context.Background())
	}
	globalHandler = handler
	globalPublicLimiter = publicLimiter
	globalLogger = relayLogger
	shutdownMu.Unlock()

	// Configure CORS middleware
	// Load CORS configuration from config file or environment
	corsOriginsStr, err := config.ConfigStringWithDefault("chatrelay.cors_allowed_origins", "")
	// No else needed: optional operation (CORS configuration with fallback logging)
	if err == nil && corsOriginsStr != "" {
		if containsPlaceholder(corsOriginsStr) {
			return fmt.Errorf("chatrelay.cors_allowed_origins contains placeholder value %q — set actual origins before deploying", corsOriginsStr)
		}
		// Parse allowed origins from comma-separated string
		allowedOrigins := strings.Split(corsOriginsStr, ",")
		for i, origin := range allowedOrigins {
			allowedOrigins[i] = strings.TrimSpace(origin)
		}

		// Configure CORS middleware
		corsConfig := cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}

		// Apply CORS middleware to the router
		r.Use(cors.New(corsConfig))

		relayLogger.Info("CORS middleware configured",
			"allowed_origins", allowedOrigins,
			"allow_credentials", true)
	} else {
		relayLogger.Warn("No CORS origins configured, CORS middleware not enabled")
	}

	// Configure trusted proxies to prevent X-Forwarded-For spoofing.
	// c.ClientIP() will only trust X-Forwarded-For from these networks.
	trustedProxiesStr, _ := config.ConfigStringWithDefault("chatrelay.trusted_proxies", constants.DefaultTrustedProxies)
	if trustedProxiesStr != "" {
		proxies := strings.Split(trustedProxiesStr, ",")
		for i, p := range proxies {
			proxies[i] = strings.TrimSpace(p)
		}
		if err := r.SetTrustedProxies(proxies); err != nil {
			relayLogger.Warn("Failed to set trusted proxies", "error", err)
		} else {
			relayLogger.Info("Trusted proxies configured", "proxies", proxies)
		}
	}

	// Apply security headers middleware
	r.Use(securityHeadersMiddleware())

	// Apply metrics middleware to record HTTP request duration
	r.Use(metricsMiddleware())

	relayLogger.Info("Using HTTP path prefix", "prefix", pathPrefix)

	// Register routes
	relayGroup := r.Group(pathPrefix)
	{
		// WebSocket endpoint - use Gin context adapter
		relayGroup.GET("/ws", func(c *gin.Context) {
			// If JWT is in query param, move it to Authorization header and redact
			// from URL to prevent it from appearing in Gin access logs.
			if token := c.Query(constants.QueryParamToken); token != "" {
				if c.Request.Header.Get("Authorization") == "" {
					c.Request.Header.Set("Authorization", constants.BearerPrefix+token)
				}
				q := c.Request.URL.Query()
				q.Del(constants.QueryParamToken)
				c.Request.URL.RawQuery = q.Encode()
			}
			handler.HandleWebSocket(c.Writer, c.Request)
		})

		// Room stats endpoint: message volume for the shared room with a
		// recipient. Authenticated but scoped to the caller's own rooms by
		// construction (the room is derived from the caller's identity).
		relayGroup.GET("/rooms/:recipient/stats", userAuthMiddleware(validator, relayLogger), handleRoomStats(store, relayLogger))

		// Health check endpoints (rate limited to prevent abuse)
		relayGroup.GET("/healthz", publicRateLimitMiddleware(publicLimiter, relayLogger), handleHealthCheck)
		relayGroup.GET("/readyz", publicRateLimitMiddleware(publicLimiter, relayLogger), handleReadyCheck(mongo, dbName, collName, relayLogger))
	}

	// Prometheus metrics endpoint — under prefix, restricted to configured networks
	metricsAllowedStr, _ := config.ConfigStringWithDefault("chatrelay.metrics_allowed_networks", constants.DefaultMetricsAllowedNetworks)
	metricsNets := parseNetworks(metricsAllowedStr, relayLogger)
	relayGroup.GET("/metrics/prometheus",
		metricsNetworkMiddleware(metricsNets, relayLogger),
		publicRateLimitMiddleware(publicLimiter, relayLogger),
		gin.WrapH(promhttp.Handler()),
	)

	// Warn if MongoDB URI appears to have no authentication
	mongoURI, _ := config.ConfigStringWithDefault("database.uri", "")
	if mongoURI == "" {
		mongoURI, _ = config.ConfigStringWithDefault("MONGO_URI", "")
	}
	if mongoURI != "" && !strings.Contains(mongoURI, "@") {
		relayLogger.Warn("MongoDB URI does not contain authentication credentials — ensure auth is configured for production")
	}

	relayLogger.Info("Chat relay service registered successfully",
		"websocket_endpoint", pathPrefix+"/ws",
		"stats_endpoint", pathPrefix+"/rooms/:recipient/stats",
		"health_endpoints", pathPrefix+"/healthz, "+pathPrefix+"/readyz",
		"metrics_endpoint", pathPrefix+"/metrics/prometheus",
	)

	return nil
}

// securityHeadersMiddleware adds standard HTTP security headers to all responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Next()
	}
}

// metricsMiddleware records HTTP request duration for Prometheus monitoring
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.HTTPRequestDuration.With(prometheus.Labels{
			"endpoint": c.FullPath(),
			"method":   c.Request.Method,
		}).Observe(time.Since(start).Seconds())
	}
}

// publicRateLimitMiddleware creates a Gin middleware for rate limiting public endpoints
// (healthz, readyz, metrics) by client IP to prevent abuse.
func publicRateLimitMiddleware(limiter *ratelimit.RequestLimiter, logger *golog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Use Gin's ClientIP() which respects trusted proxies to prevent X-Forwarded-For spoofing
		clientIP := c.ClientIP()

		if !limiter.Allow(clientIP) {
			retryAfter := limiter.GetRetryAfter(clientIP)
			retryAfterSeconds := (retryAfter + constants.MillisecondsPerSecond - 1) / constants.MillisecondsPerSecond
			if retryAfterSeconds < constants.MinRetryAfterSeconds {
				retryAfterSeconds = constants.MinRetryAfterSeconds
			}
			c.Header(constants.HeaderRetryAfter, fmt.Sprintf("%d", retryAfterSeconds))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": constants.ErrMsgRateLimitExceeded,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// userAuthMiddleware creates a Gin middleware for JWT authentication
func userAuthMiddleware(validator *auth.Validator, logger *golog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		token, err := util.ExtractBearerToken(authHeader)
		// No else needed: early return pattern (guard clause)
		if err != nil {
			httperrors.RespondUnauthorized(c, httperrors.MsgInvalidAuthHeader)
			c.Abort()
			return
		}

		// Validate token
		claims, err := validator.ValidateToken(token)
		// No else needed: early return pattern (guard clause)
		if err != nil {
			// Log detailed error server-side
			logger.Warn("Token validation failed",
				"error", err,
				"component", "auth")
			// Send generic error to client
			httperrors.RespondInvalidToken(c)
			c.Abort()
			return
		}

		// Store claims in context
		c.Set("claims", claims)
		c.Next()
	}
}

// handleRoomStats returns a handler reporting message volume for the room
// shared between the authenticated caller and the recipient in the path.
func handleRoomStats(store storage.Store, logger *golog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get claims from context (set by userAuthMiddleware)
		claimsInterface, exists := c.Get("claims")
		// No else needed: early return pattern (guard clause)
		if !exists {
			httperrors.RespondUnauthorized(c, "")
			return
		}

		claims, ok := claimsInterface.(*auth.Claims)
		// No else needed: early return pattern (guard clause)
		if !ok {
			util.LogError(logger, "http", "validate claims type", fmt.Errorf("invalid claims type in context"))
			httperrors.RespondInternalError(c)
			return
		}

		recipient, err := room.ParseIdentity(c.Param("recipient"))
		// No else needed: early return pattern (guard clause)
		if err != nil {
			httperrors.RespondBadRequest(c, constants.ErrMsgInvalidRecipient)
			return
		}

		roomID := room.Derive(claims.UserID, recipient)

		ctx, cancel := util.NewDefaultTimeoutContext()
		defer cancel()

		total, err := store.CountByRoom(ctx, roomID)
		// No else needed: early return pattern (guard clause)
		if err != nil {
			// Log detailed error server-side
			util.LogError(logger, "http", "count room messages", err, "room", roomID)
			// Send generic error to client
			httperrors.RespondInternalError(c)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"room":     roomID,
			"messages": total,
		})
	}
}

// handleHealthCheck returns a handler for liveness probe endpoint.
// This endpoint checks if the application is alive and should be restarted if it fails.
// It performs minimal checks to determine if the process is running correctly.
func handleHealthCheck(c *gin.Context) {
	// Basic liveness check - if we can respond, we're alive
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReadyCheck returns a handler for readiness probe endpoint.
// This endpoint checks if the application is ready to serve traffic.
func handleReadyCheck(mongo *gomongo.Mongo, dbName, collName string, logger *golog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := make(map[string]interface{})
		allReady := true

		// Check MongoDB connection
		// No else needed: optional operation (MongoDB health check)
		if mongo == nil {
			checks["mongodb"] = map[string]interface{}{
				"status": "not ready",
				"reason": "MongoDB not initialized",
			}
			allReady = false
		} else {
			// Verify MongoDB connection by pinging the server
			ctx, cancel := util.NewTimeoutContext(constants.HealthCheckTimeout)
			defer cancel()

			testColl := mongo.Coll(dbName, collName)
			err := testColl.Ping(ctx)
			// No else needed: optional operation (health check result recording)
			if err != nil {
				// Log detailed error server-side
				logger.Warn("MongoDB health check failed",
					"error", err,
					"component", "health")

				// Send generic error to client
				checks["mongodb"] = map[string]interface{}{
					"status": "not ready",
					"reason": "Database connectivity check failed",
				}
				allReady = false
			} else {
				checks["mongodb"] = map[string]interface{}{
					"status": "ready",
				}
			}
		}

		// Determine overall status
		status := "ready"
		statusCode := http.StatusOK
		// No else needed: optional operation (status code adjustment based on health)
		if !allReady {
			status = "not ready"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    checks,
		})
	}
}

// Shutdown gracefully shuts down the chat relay service.
// It closes all active WebSocket connections and stops background goroutines.
// This function should be called when the application receives a SIGTERM or SIGINT signal.
// It respects the context deadline and will force shutdown if the deadline is exceeded.
func Shutdown(ctx context.Context) error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()

	// No else needed: optional operation (logging during shutdown)
	if globalLogger != nil {
		globalLogger.Info("Starting graceful shutdown of chat relay service")
	}

	// Stop public rate limiter cleanup
	if globalPublicLimiter != nil {
		globalPublicLimiter.StopCleanup()
	}

	// Close all WebSocket connections with context deadline
	// No else needed: optional operation (WebSocket shutdown with error handling)
	if globalHandler != nil {
		// No else needed: early return pattern (guard clause)
		if err := globalHandler.ShutdownWithContext(ctx); err != nil {
			// No else needed: optional operation (error logging)
			if globalLogger != nil {
				globalLogger.Warn("Relay handler shutdown error", "error", err)
			}
			return err
		}
	}

	// No else needed: optional operation (final logging)
	if globalLogger != nil {
		globalLogger.Info("Chat relay service shutdown complete")
		// Note: Logger.Close() should be called by gomain, not here
	}

	return nil
}

// validateJWTSecret validates the JWT secret strength
// Returns error if secret is empty, too short, or contains weak patterns
func validateJWTSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	// Check minimum length (32 characters for strong security)
	if len(secret) < constants.MinJWTSecretLength {
		return fmt.Errorf(
			"JWT secret must be at least %d characters (got %d). "+
				"Generate a strong secret with: openssl rand -base64 32",
			constants.MinJWTSecretLength, len(secret))
	}

	// Check for common weak secrets
	lowerSecret := strings.ToLower(secret)
	for _, weak := range constants.WeakSecrets {
		if strings.Contains(lowerSecret, weak) {
			return fmt.Errorf(
				"JWT secret appears to be weak (contains '%s'). "+
					"Use a cryptographically random secret generated with: openssl rand -base64 32",
				weak)
		}
	}

	return nil
}

// parseNetworks parses a comma-separated list of CIDR network strings.
func parseNetworks(networksStr string, logger *golog.Logger) []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range strings.Split(networksStr, ",") {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			logger.Warn("Invalid CIDR in metrics_allowed_networks", "cidr", cidr, "error", err)
			continue
		}
		nets = append(nets, ipNet)
	}
	return nets
}

// metricsNetworkMiddleware restricts access to the metrics endpoint to configured networks.
func metricsNetworkMiddleware(allowedNets []*net.IPNet, logger *golog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// If no networks configured, allow all (development mode)
		if len(allowedNets) == 0 {
			c.Next()
			return
		}

		clientIP := net.ParseIP(c.ClientIP())
		if clientIP == nil {
			logger.Warn("Could not parse client IP for metrics access", "ip", c.ClientIP())
			httperrors.RespondForbidden(c)
			c.Abort()
			return
		}

		for _, ipNet := range allowedNets {
			if ipNet.Contains(clientIP) {
				c.Next()
				return
			}
		}

		logger.Warn("Metrics access denied from unauthorized network",
			"client_ip", c.ClientIP(),
			"component", "metrics")
		httperrors.RespondForbidden(c)
		c.Abort()
	}
}

// containsPlaceholder checks if a configuration value still contains
// a deployment placeholder that should have been replaced.
func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	return strings.Contains(upper, "REPLACE_WITH") ||
		strings.Contains(upper, "PLACEHOLDER") ||
		strings.Contains(upper, "CHANGE-ME") ||
		strings.Contains(upper, "CHANGE_ME") ||
		strings.Contains(upper, "YOUR-")
}
