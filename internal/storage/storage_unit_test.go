package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/real-rm/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func testLogger(t *testing.T) *golog.Logger {
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

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "nil error", err: nil, retryable: false},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), retryable: true},
		{name: "connection reset", err: errors.New("read: connection reset by peer"), retryable: true},
		{name: "io timeout", err: errors.New("read tcp: i/o timeout"), retryable: true},
		{name: "EOF", err: errors.New("unexpected EOF"), retryable: true},
		{name: "server selection timeout", err: errors.New("server selection timeout: no suitable servers"), retryable: true},
		{name: "no reachable servers", err: errors.New("no reachable servers"), retryable: true},
		{name: "connection pool", err: errors.New("connection pool was drained"), retryable: true},
		{name: "socket error", err: errors.New("socket was unexpectedly closed"), retryable: true},
		{name: "duplicate key", err: errors.New("E11000 duplicate key error"), retryable: false},
		{name: "validation error", err: errors.New("document failed validation"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

func TestContainsAny(t *testing.T) {
	assert.True(t, containsAny("connection refused by host", []string{"refused", "reset"}))
	assert.False(t, containsAny("all good", []string{"refused", "reset"}))
	assert.False(t, containsAny("anything", nil))
}

// Field names are part of the on-disk contract; renaming a bson tag silently
// breaks existing deployments.
func TestRecordFieldNaming(t *testing.T) {
	rec := Record{
		Sender:   7,
		Receiver: 12,
		Room:     "chat_7_12",
		Body:     "hello",
		SentAt:   time.Now().UTC(),
	}

	data, err := bson.Marshal(rec)
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(data, &doc))

	for _, field := range []string{"sender", "receiver", "room", "body", "ts"} {
		assert.Contains(t, doc, field)
	}
	assert.Equal(t, int64(7), doc["sender"])
	assert.Equal(t, int64(12), doc["receiver"])
	assert.Equal(t, "chat_7_12", doc["room"])
}

func TestSaveMessage_ValidationGuards(t *testing.T) {
	// Guard clauses run before any collection access, so a zero store is enough.
	s := &MongoStore{logger: testLogger(t)}
	ctx := context.Background()

	err := s.SaveMessage(ctx, 0, 12, "hello")
	assert.ErrorIs(t, err, ErrInvalidParticipant)

	err = s.SaveMessage(ctx, 7, -1, "hello")
	assert.ErrorIs(t, err, ErrInvalidParticipant)

	err = s.SaveMessage(ctx, 7, 12, "   ")
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestRecentByRoom_EmptyRoomID(t *testing.T) {
	s := &MongoStore{logger: testLogger(t)}

	_, err := s.RecentByRoom(context.Background(), "", 10)
	assert.Error(t, err)
}

func TestCountByRoom_EmptyRoomID(t *testing.T) {
	s := &MongoStore{logger: testLogger(t)}

	_, err := s.CountByRoom(context.Background(), "")
	assert.Error(t, err)
}

func TestRetryOperation_NonRetryableFailsFast(t *testing.T) {
	s := &MongoStore{logger: testLogger(t)}

	calls := 0
	permanent := errors.New("document failed validation")
	err := s.retryOperation(context.Background(), "test", func() error {
		calls++
		return permanent
	})

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls, "non-retryable errors must not be retried")
}

func TestRetryOperation_RetryableExhaustsAttempts(t *testing.T) {
	s := &MongoStore{logger: testLogger(t)}

	calls := 0
	err := s.retryOperation(context.Background(), "test", func() error {
		calls++
		return errors.New("i/o timeout")
	})

	require.Error(t, err)
	assert.Equal(t, defaultRetryConfig.maxAttempts, calls)
	assert.Contains(t, err.Error(), "operation failed after")
}

func TestRetryOperation_SucceedsAfterTransientFailure(t *testing.T) {
	s := &MongoStore{logger: testLogger(t)}

	calls := 0
	err := s.retryOperation(context.Background(), "test", func() error {
		calls++
		if calls == 1 {
			return errors.New("connection reset by peer")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryOperation_CancelledContext(t *testing.T) {
	s := &MongoStore{logger: testLogger(t)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.retryOperation(ctx, "test", func() error {
		return errors.New("i/o timeout")
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}