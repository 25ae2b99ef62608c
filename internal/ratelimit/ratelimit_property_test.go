package ratelimit

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/real-rm/chatrelay/internal/room"
)

// Property: the connection limiter never admits more than max concurrent
// sessions for a user, regardless of the allow/release interleaving.
func TestConnectionLimiter_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("count never exceeds max", prop.ForAll(
		func(max int, attempts int) bool {
			cl := NewConnectionLimiter(max)
			user := room.Identity(1)

			for i := 0; i < attempts; i++ {
				cl.Allow(user)
			}
			return cl.GetCount(user) <= max
		},
		gen.IntRange(1, 10),
		gen.IntRange(0, 50),
	))

	properties.Property("count never goes negative", prop.ForAll(
		func(releases int) bool {
			cl := NewConnectionLimiter(5)
			user := room.Identity(2)

			cl.Allow(user)
			for i := 0; i < releases; i++ {
				cl.Release(user)
			}
			return cl.GetCount(user) >= 0
		},
		gen.IntRange(0, 20),
	))

	properties.Property("released slots can be reacquired", prop.ForAll(
		func(max int) bool {
			cl := NewConnectionLimiter(max)
			user := room.Identity(3)

			for i := 0; i < max; i++ {
				if !cl.Allow(user) {
					return false
				}
			}
			cl.Release(user)
			return cl.Allow(user)
		},
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

// Property: a fresh sliding window limiter admits exactly min(requests, limit)
// requests when they arrive inside one window.
func TestRequestLimiter_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("admits exactly min(requests, limit)", prop.ForAll(
		func(limit int, requests int) bool {
			rl := NewRequestLimiter(time.Minute, limit)

			admitted := 0
			for i := 0; i < requests; i++ {
				if rl.Allow("key") {
					admitted++
				}
			}

			expected := requests
			if limit < requests {
				expected = limit
			}
			return admitted == expected
		},
		gen.IntRange(1, 20),
		gen.IntRange(0, 40),
	))

	properties.Property("retry-after is zero until the limit is reached", prop.ForAll(
		func(limit int) bool {
			rl := NewRequestLimiter(time.Minute, limit)

			for i := 0; i < limit-1; i++ {
				rl.Allow("key")
			}
			return rl.GetRetryAfter("key") == 0
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t)
}
