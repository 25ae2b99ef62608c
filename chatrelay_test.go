package chatrelay

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/real-rm/chatrelay/internal/auth"
	"github.com/real-rm/chatrelay/internal/room"
	"github.com/real-rm/chatrelay/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/real-rm/goconfig"
	"github.com/real-rm/golog"
	"github.com/real-rm/gomongo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "k7jH9mP2nQ8vR4xW6yZ1aB3cD5eF0gI2"

// performRequest is a helper function to perform HTTP requests in tests
func performRequest(r http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// signedToken creates a signed JWT for the given user with the shared test secret
func signedToken(t *testing.T, userID int64, expiresIn time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiresIn).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tokenString
}

func TestRegister(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("function signature", func(t *testing.T) {
		// This test just verifies the function exists with the correct signature
		// Actual integration testing would require a full environment setup
		var registerFunc func(*gin.Engine, *goconfig.ConfigAccessor, *golog.Logger, *gomongo.Mongo) error
		registerFunc = Register
		assert.NotNil(t, registerFunc)
	})
}

// TestUserAuthMiddleware_ValidToken tests userAuthMiddleware with a valid token
func TestUserAuthMiddleware_ValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	validator := auth.NewValidator(testSecret)
	logger := testutil.CreateTestLogger(t)
	defer logger.Close()

	router := gin.New()
	router.Use(userAuthMiddleware(validator, logger))
	router.GET("/test", func(c *gin.Context) {
		// Verify claims are set in context
		claimsInterface, exists := c.Get("claims")
		assert.True(t, exists)

		extractedClaims, ok := claimsInterface.(*auth.Claims)
		assert.True(t, ok)
		assert.Equal(t, room.Identity(42), extractedClaims.UserID)

		c.JSON(200, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, 42, time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
}

// TestUserAuthMiddleware_MissingAuthHeader tests userAuthMiddleware without Authorization header
func TestUserAuthMiddleware_MissingAuthHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	validator := auth.NewValidator(testSecret)
	logger := testutil.CreateTestLogger(t)
	defer logger.Close()

	router := gin.New()
	router.Use(userAuthMiddleware(validator, logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid authorization header")
}

// TestUserAuthMiddleware_ExpiredToken tests userAuthMiddleware with an expired token
func TestUserAuthMiddleware_ExpiredToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	validator := auth.NewValidator(testSecret)
	logger := testutil.CreateTestLogger(t)
	defer logger.Close()

	router := gin.New()
	router.Use(userAuthMiddleware(validator, logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, 42, -time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

// TestUserAuthMiddleware_InvalidToken tests userAuthMiddleware with a malformed token
func TestUserAuthMiddleware_InvalidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	validator := auth.NewValidator(testSecret)
	logger := testutil.CreateTestLogger(t)
	defer logger.Close()

	router := gin.New()
	router.Use(userAuthMiddleware(validator, logger))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	req, _ := http.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 401, w.Code)
}

// statsRouter builds a router with the room stats endpoint backed by a mock store
func statsRouter(t *testing.T, store *testutil.MockStore) *gin.Engine {
	t.Helper()

	validator := auth.NewValidator(testSecret)
	logger := testutil.CreateTestLogger(t)
	t.Cleanup(func() { logger.Close() })

	router := gin.New()
	router.GET("/rooms/:recipient/stats", userAuthMiddleware(validator, logger), handleRoomStats(store, logger))
	return router
}

// TestHandleRoomStats_CountsRoomMessages tests the stats endpoint over a populated store
func TestHandleRoomStats_CountsRoomMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := &testutil.MockStore{}
	ctx := t.Context()
	require.NoError(t, store.SaveMessage(ctx, 7, 12, "hello"))
	require.NoError(t, store.SaveMessage(ctx, 12, 7, "hi back"))
	require.NoError(t, store.SaveMessage(ctx, 7, 99, "unrelated room"))

	router := statsRouter(t, store)

	req, _ := http.NewRequest("GET", "/rooms/12/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, 7, time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "chat_7_12", response["room"])
	assert.Equal(t, float64(2), response["messages"])
}

// TestHandleRoomStats_EmptyRoom tests the stats endpoint for a room with no traffic
func TestHandleRoomStats_EmptyRoom(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := statsRouter(t, &testutil.MockStore{})

	req, _ := http.NewRequest("GET", "/rooms/12/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, 7, time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"messages":0`)
}

// TestHandleRoomStats_InvalidRecipient tests the stats endpoint with a non-numeric recipient
func TestHandleRoomStats_InvalidRecipient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := statsRouter(t, &testutil.MockStore{})

	req, _ := http.NewRequest("GET", "/rooms/bob/stats", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, 7, time.Hour))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

// TestHandleRoomStats_RequiresAuth tests the stats endpoint rejects unauthenticated requests
func TestHandleRoomStats_RequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := statsRouter(t, &testutil.MockStore{})

	w := performRequest(router, "GET", "/rooms/12/stats", nil)

	assert.Equal(t, 401, w.Code)
}
