package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/real-rm/chatrelay/internal/room"
)

var (
	// ErrInvalidToken is returned when the token is malformed or invalid
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned when the token has expired
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidSignature is returned when the token signature is invalid
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrMissingClaims is returned when required claims are missing
	ErrMissingClaims = errors.New("missing required claims")
)

// Claims represents the identity extracted from a validated token
type Claims struct {
	UserID room.Identity
}

// Validator handles JWT token validation
type Validator struct {
	secret []byte
}

// NewValidator creates a new JWT validator with the given secret
func NewValidator(secret string) *Validator {
	return &Validator{
		secret: []byte(secret),
	}
}

// ValidateToken validates a JWT token and extracts the claims
// It verifies:
// - Token signature and signing algorithm (HMAC only)
// - Token expiration
// - Required user_id claim
func (v *Validator) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}

	// Parse and validate the token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		// No else needed: early return pattern (guard clause)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: unexpected signing method: %v", ErrInvalidSignature, token.Header["alg"])
		}
		return v.secret, nil
	})

	// No else needed: early return pattern (guard clause)
	if err != nil {
		// Check for specific error types
		// No else needed: early return pattern (guard clause)
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", ErrExpiredToken, err)
		}
		// No else needed: early return pattern (guard clause)
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	// No else needed: early return pattern (guard clause)
	if !token.Valid {
		return nil, fmt.Errorf("%w: token is not valid", ErrInvalidToken)
	}

	// Extract claims
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	// No else needed: early return pattern (guard clause)
	if !ok {
		return nil, fmt.Errorf("%w: unable to parse claims", ErrInvalidToken)
	}

	// Extract user_id
	userIDClaim, ok := mapClaims["user_id"]
	// No else needed: early return pattern (guard clause)
	if !ok {
		return nil, fmt.Errorf("%w: user_id claim missing", ErrMissingClaims)
	}

	userID, err := extractIdentity(userIDClaim)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingClaims, err)
	}

	return &Claims{
		UserID: userID,
	}, nil
}

// extractIdentity converts the user_id claim to an Identity.
// JSON numbers decode as float64 through MapClaims; string-encoded ids are
// accepted for compatibility with token issuers that stringify them.
func extractIdentity(claim interface{}) (room.Identity, error) {
	switch v := claim.(type) {
	case float64:
		id := room.Identity(v)
		// No else needed: early return pattern (guard clause)
		if float64(id) != v || id <= 0 {
			return 0, fmt.Errorf("user_id claim is not a positive integer: %v", v)
		}
		return id, nil
	case string:
		id, err := room.ParseIdentity(v)
		// No else needed: early return pattern (guard clause)
		if err != nil {
			return 0, fmt.Errorf("user_id claim is not a valid identity: %q", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("user_id claim has unsupported type %T", claim)
	}
}
