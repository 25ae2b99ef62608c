package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/real-rm/chatrelay/internal/room"
)

const testSecret = "test-secret-key-for-jwt-validation"

// Helper function to create a valid JWT token for testing
func createTestToken(userID int64, expiresIn time.Duration) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(expiresIn).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(testSecret))
	return tokenString
}

// Helper function to create a token with invalid signature
func createTokenWithInvalidSignature(userID int64) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("wrong-secret"))
	return tokenString
}

func TestValidateToken_ValidToken(t *testing.T) {
	validator := NewValidator(testSecret)

	tokenString := createTestToken(123, time.Hour)

	claims, err := validator.ValidateToken(tokenString)

	require.NoError(t, err)
	assert.Equal(t, room.Identity(123), claims.UserID)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	validator := NewValidator(testSecret)

	// Create token that expired 1 hour ago
	tokenString := createTestToken(123, -time.Hour)

	_, err := validator.ValidateToken(tokenString)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	validator := NewValidator(testSecret)

	tokenString := createTokenWithInvalidSignature(123)

	_, err := validator.ValidateToken(tokenString)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "signature")
}

func TestValidateToken_WrongAlgorithm(t *testing.T) {
	validator := NewValidator(testSecret)

	// Token signed with "none" algorithm must be rejected
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 123,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = validator.ValidateToken(tokenString)

	require.Error(t, err)
}

func TestValidateToken_MalformedToken(t *testing.T) {
	validator := NewValidator(testSecret)

	_, err := validator.ValidateToken("not-a-valid-jwt-token")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_EmptyToken(t *testing.T) {
	validator := NewValidator(testSecret)

	_, err := validator.ValidateToken("")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_MissingUserID(t *testing.T) {
	validator := NewValidator(testSecret)

	// Create token without user_id claim
	claims := jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
		"iat": time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(testSecret))

	_, err := validator.ValidateToken(tokenString)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingClaims)
}

func TestValidateToken_StringUserID(t *testing.T) {
	validator := NewValidator(testSecret)

	// Some token issuers stringify numeric ids
	claims := jwt.MapClaims{
		"user_id": "456",
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(testSecret))

	extracted, err := validator.ValidateToken(tokenString)

	require.NoError(t, err)
	assert.Equal(t, room.Identity(456), extracted.UserID)
}

// TestExtractIdentity covers all branches of the extractIdentity internal function.
// Since extractIdentity is package-private, we test it directly here.
func TestExtractIdentity(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    room.Identity
		wantErr bool
	}{
		{
			name:  "float64 — normal JSON number decoding",
			input: float64(42),
			want:  42,
		},
		{
			name:  "string-encoded id",
			input: "42",
			want:  42,
		},
		{
			name:    "non-integer float",
			input:   float64(1.5),
			wantErr: true,
		},
		{
			name:    "zero",
			input:   float64(0),
			wantErr: true,
		},
		{
			name:    "negative",
			input:   float64(-7),
			wantErr: true,
		},
		{
			name:    "non-numeric string",
			input:   "abc",
			wantErr: true,
		},
		{
			name:    "nil — invalid type",
			input:   nil,
			wantErr: true,
		},
		{
			name:    "bool — invalid type",
			input:   true,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := extractIdentity(tt.input)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, id)
			}
		})
	}
}
