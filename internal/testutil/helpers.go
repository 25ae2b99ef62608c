// Package testutil provides common test helpers and mock implementations.
package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/real-rm/golog"

	"github.com/real-rm/chatrelay/internal/room"
	"github.com/real-rm/chatrelay/internal/storage"
)

// SavedMessage records one SaveMessage call made against MockStore.
type SavedMessage struct {
	Sender   room.Identity
	Receiver room.Identity
	Body     string
}

// MockStore is an in-memory implementation of storage.Store for testing.
// It tracks saved messages and allows configurable error injection.
type MockStore struct {
	mu sync.Mutex

	Saved []SavedMessage

	// Error injection
	SaveMessageError error

	// Optional hook invoked on every save (before error injection check)
	SaveMessageFunc func(sender, receiver room.Identity, body string) error
}

var _ storage.Store = (*MockStore)(nil)

// SaveMessage records the message, or returns the injected error.
func (m *MockStore) SaveMessage(ctx context.Context, sender, receiver room.Identity, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SaveMessageFunc != nil {
		if err := m.SaveMessageFunc(sender, receiver, body); err != nil {
			return err
		}
	}
	if m.SaveMessageError != nil {
		return m.SaveMessageError
	}

	m.Saved = append(m.Saved, SavedMessage{Sender: sender, Receiver: receiver, Body: body})
	return nil
}

// RecentByRoom returns recorded messages for the room, newest first.
func (m *MockStore) RecentByRoom(ctx context.Context, id room.ID, limit int) ([]storage.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	records := make([]storage.Record, 0)
	for i := len(m.Saved) - 1; i >= 0; i-- {
		s := m.Saved[i]
		if room.Derive(s.Sender, s.Receiver) != id {
			continue
		}
		records = append(records, storage.Record{
			Sender:   int64(s.Sender),
			Receiver: int64(s.Receiver),
			Room:     string(id),
			Body:     s.Body,
			SentAt:   time.Now().UTC(),
		})
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

// CountByRoom returns the number of recorded messages for the room.
func (m *MockStore) CountByRoom(ctx context.Context, id room.ID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for _, s := range m.Saved {
		if room.Derive(s.Sender, s.Receiver) == id {
			count++
		}
	}
	return count, nil
}

// SetSaveError updates the injected SaveMessage error.
// Safe to call while the store is in use.
func (m *MockStore) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveMessageError = err
}

// SavedMessages returns a copy of the recorded messages.
func (m *MockStore) SavedMessages() []SavedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SavedMessage, len(m.Saved))
	copy(out, m.Saved)
	return out
}

// CreateTestLogger creates a logger suitable for tests.
// Output goes to a temp directory that is cleaned up with the test.
func CreateTestLogger(t *testing.T) *golog.Logger {
	t.Helper()

	logger, err := golog.InitLog(golog.LogConfig{
		Dir:            t.TempDir(),
		Level:          "error",
		StandardOutput: false,
	})
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}
	return logger
}
