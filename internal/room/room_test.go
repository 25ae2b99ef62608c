package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_OrderIndependent(t *testing.T) {
	assert.Equal(t, Derive(7, 12), Derive(12, 7))
	assert.Equal(t, ID("chat_7_12"), Derive(7, 12))
	assert.Equal(t, ID("chat_7_12"), Derive(12, 7))
}

func TestDerive_DistinctPairs(t *testing.T) {
	assert.NotEqual(t, Derive(7, 12), Derive(7, 13))
	assert.NotEqual(t, Derive(1, 2), Derive(2, 3))
}

func TestDerive_SelfPair(t *testing.T) {
	// Degenerate but well-defined: both sides are the same identity
	assert.Equal(t, ID("chat_5_5"), Derive(5, 5))
}

func TestParseIdentity_Valid(t *testing.T) {
	id, err := ParseIdentity("42")
	require.NoError(t, err)
	assert.Equal(t, Identity(42), id)
	assert.Equal(t, "42", id.String())
}

func TestParseIdentity_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"non-numeric", "abc"},
		{"zero", "0"},
		{"negative", "-3"},
		{"float", "1.5"},
		{"trailing garbage", "12x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIdentity(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidIdentity)
		})
	}
}
