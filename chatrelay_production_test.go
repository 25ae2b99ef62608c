package chatrelay

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/real-rm/chatrelay/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// TestValidateJWTSecret tests the validateJWTSecret function
func TestValidateJWTSecret(t *testing.T) {
	t.Run("rejects empty secret", func(t *testing.T) {
		err := validateJWTSecret("")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "JWT secret is required")
	})

	t.Run("rejects secret shorter than minimum length", func(t *testing.T) {
		shortSecret := "short"
		err := validateJWTSecret(shortSecret)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "must be at least 32 characters")
		assert.Contains(t, err.Error(), fmt.Sprintf("got %d", len(shortSecret)))
	})

	t.Run("accepts secret exactly at minimum length", func(t *testing.T) {
		secret := "abcdefghijklmnopqrstuvwxyz678901" // 32 chars, no weak patterns
		assert.Equal(t, 32, len(secret))
		err := validateJWTSecret(secret)
		assert.NoError(t, err)
	})

	t.Run("accepts long strong secret", func(t *testing.T) {
		err := validateJWTSecret("k7jH9mP2nQ8vR4xW6yZ1aB3cD5eF0gI2jKlMnOpQrStUvWxYz")
		assert.NoError(t, err)
	})

	t.Run("rejects weak patterns", func(t *testing.T) {
		weakSecrets := []string{
			"my-secret-key-that-is-long-enough-for-validation",
			"my-password-key-that-is-long-enough-for-validation",
			"this-is-a-test-key-that-is-long-enough",
			"please-changeme-this-is-long-enough-for-validation",
			"this-is-the-default-key-that-is-long-enough",
			"my-key-with-12345-that-is-long-enough-for-validation",
		}
		for _, secret := range weakSecrets {
			err := validateJWTSecret(secret)
			assert.Error(t, err, "secret %q should be rejected", secret)
			assert.Contains(t, err.Error(), "appears to be weak")
		}
	})

	t.Run("weak pattern check is case-insensitive", func(t *testing.T) {
		err := validateJWTSecret("my-SECRET-key-that-is-long-enough-for-validation")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "appears to be weak")
	})
}

// TestContainsPlaceholder tests the deployment placeholder detection
func TestContainsPlaceholder(t *testing.T) {
	assert.True(t, containsPlaceholder("REPLACE_WITH_REAL_SECRET"))
	assert.True(t, containsPlaceholder("placeholder-value"))
	assert.True(t, containsPlaceholder("change-me-before-deploy"))
	assert.True(t, containsPlaceholder("CHANGE_ME"))
	assert.True(t, containsPlaceholder("your-origin.example.com"))
	assert.False(t, containsPlaceholder("k7jH9mP2nQ8vR4xW6yZ1aB3cD5eF0gI2"))
	assert.False(t, containsPlaceholder(""))
}

// TestParseNetworks tests CIDR list parsing with invalid entries
func TestParseNetworks(t *testing.T) {
	logger := testutil.CreateTestLogger(t)
	defer logger.Close()

	t.Run("parses valid CIDR list", func(t *testing.T) {
		nets := parseNetworks("10.0.0.0/8, 192.168.0.0/16", logger)
		assert.Len(t, nets, 2)
	})

	t.Run("skips invalid entries", func(t *testing.T) {
		nets := parseNetworks("10.0.0.0/8,not-a-cidr,192.168.0.0/16", logger)
		assert.Len(t, nets, 2)
	})

	t.Run("empty string yields no networks", func(t *testing.T) {
		nets := parseNetworks("", logger)
		assert.Empty(t, nets)
	})
}

// TestMetricsNetworkMiddleware tests network-based access control for the metrics endpoint
func TestMetricsNetworkMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	logger := testutil.CreateTestLogger(t)
	defer logger.Close()

	t.Run("allows all when no networks configured", func(t *testing.T) {
		router := gin.New()
		router.GET("/metrics", metricsNetworkMiddleware(nil, logger), func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		w := performRequest(router, "GET", "/metrics", nil)
		assert.Equal(t, 200, w.Code)
	})

	t.Run("allows client inside configured network", func(t *testing.T) {
		nets := parseNetworks("127.0.0.0/8", logger)

		router := gin.New()
		router.GET("/metrics", metricsNetworkMiddleware(nets, logger), func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		req, _ := http.NewRequest("GET", "/metrics", nil)
		req.RemoteAddr = "127.0.0.1:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, 200, w.Code)
	})

	t.Run("rejects client outside configured networks", func(t *testing.T) {
		nets := parseNetworks("10.0.0.0/8", logger)

		router := gin.New()
		router.GET("/metrics", metricsNetworkMiddleware(nets, logger), func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		req, _ := http.NewRequest("GET", "/metrics", nil)
		req.RemoteAddr = "203.0.113.7:12345"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, 403, w.Code)
	})
}

// TestSecurityHeadersMiddleware tests that security headers are applied to responses
func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(securityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	w := performRequest(router, "GET", "/test", nil)

	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "1; mode=block", w.Header().Get("X-XSS-Protection"))
}
