// Package ratelimit provides rate limiting for WebSocket admissions and
// public HTTP endpoints. It implements per-user connection counting and a
// sliding window limiter to prevent abuse.
package ratelimit

import (
	"sync"
	"time"

	"github.com/real-rm/chatrelay/internal/room"
)

// ConnectionLimiter limits the number of concurrent sessions per user
type ConnectionLimiter struct {
	sessions   map[room.Identity]int // user -> session count
	maxPerUser int
	mu         sync.RWMutex
}

// NewConnectionLimiter creates a new connection limiter
func NewConnectionLimiter(maxPerUser int) *ConnectionLimiter {
	return &ConnectionLimiter{
		sessions:   make(map[room.Identity]int),
		maxPerUser: maxPerUser,
	}
}

// Allow checks if a new session is allowed for the user
func (cl *ConnectionLimiter) Allow(user room.Identity) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	count := cl.sessions[user]
	if count >= cl.maxPerUser {
		return false
	}

	cl.sessions[user] = count + 1
	return true
}

// Release decrements the session count for a user
func (cl *ConnectionLimiter) Release(user room.Identity) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if count, ok := cl.sessions[user]; ok {
		if count <= 1 {
			delete(cl.sessions, user)
		} else {
			cl.sessions[user] = count - 1
		}
	}
}

// GetCount returns the current session count for a user
func (cl *ConnectionLimiter) GetCount(user room.Identity) int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.sessions[user]
}

// RequestLimiter limits request rates per client key using a sliding window.
// Keys are opaque; public endpoints key by client IP.
type RequestLimiter struct {
	events map[string][]time.Time // key -> timestamps
	window time.Duration
	limit  int
	mu     sync.RWMutex

	// Cleanup goroutine management
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupWg       sync.WaitGroup
}

// NewRequestLimiter creates a new sliding window request limiter
// window: time window for rate limiting (e.g., 1 minute)
// limit: maximum number of requests allowed in the window
func NewRequestLimiter(window time.Duration, limit int) *RequestLimiter {
	return &RequestLimiter{
		events:          make(map[string][]time.Time),
		window:          window,
		limit:           limit,
		cleanupInterval: 5 * time.Minute,
		stopCleanup:     make(chan struct{}),
	}
}

// Allow checks if a request is allowed based on rate limiting
// Returns true if allowed, false if rate limit exceeded
func (rl *RequestLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	events := rl.events[key]

	// Filter out old events outside the window
	var recentEvents []time.Time
	for _, t := range events {
		if t.After(cutoff) {
			recentEvents = append(recentEvents, t)
		}
	}

	if len(recentEvents) >= rl.limit {
		return false
	}

	recentEvents = append(recentEvents, now)
	rl.events[key] = recentEvents

	return true
}

// GetRetryAfter returns the time in milliseconds until the next request is allowed
func (rl *RequestLimiter) GetRetryAfter(key string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	events := rl.events[key]
	if len(events) < rl.limit {
		return 0
	}

	now := time.Now()
	cutoff := now.Add(-rl.window)

	var oldestInWindow time.Time
	for _, t := range events {
		if t.After(cutoff) {
			if oldestInWindow.IsZero() || t.Before(oldestInWindow) {
				oldestInWindow = t
			}
		}
	}

	if oldestInWindow.IsZero() {
		return 0
	}

	// Calculate when the oldest event will expire
	expiresAt := oldestInWindow.Add(rl.window)
	retryAfter := expiresAt.Sub(now)

	if retryAfter < 0 {
		return 0
	}

	return int(retryAfter.Milliseconds())
}

// Reset clears the rate limit history for a key
func (rl *RequestLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.events, key)
}

// Cleanup removes expired events to prevent memory leaks
// Should be called periodically
func (rl *RequestLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	for key, events := range rl.events {
		var recentEvents []time.Time
		for _, t := range events {
			if t.After(cutoff) {
				recentEvents = append(recentEvents, t)
			}
		}

		if len(recentEvents) == 0 {
			delete(rl.events, key)
		} else {
			rl.events[key] = recentEvents
		}
	}
}

// StartCleanup starts a background goroutine that periodically cleans up expired events
func (rl *RequestLimiter) StartCleanup() {
	rl.cleanupWg.Add(1)
	go func() {
		defer rl.cleanupWg.Done()
		ticker := time.NewTicker(rl.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup()
			case <-rl.stopCleanup:
				return
			}
		}
	}()
}

// StopCleanup stops the cleanup goroutine and waits for it to finish.
// Safe to call more than once.
func (rl *RequestLimiter) StopCleanup() {
	rl.mu.Lock()
	if rl.stopCleanup != nil {
		select {
		case <-rl.stopCleanup:
			// Already closed, do nothing
		default:
			close(rl.stopCleanup)
		}
	}
	rl.mu.Unlock()

	rl.cleanupWg.Wait()
}
