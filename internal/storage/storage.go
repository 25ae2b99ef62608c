// Package storage persists relayed chat messages in MongoDB using gomongo.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/real-rm/golog"
	"github.com/real-rm/gomongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/real-rm/chatrelay/internal/constants"
	"github.com/real-rm/chatrelay/internal/metrics"
	"github.com/real-rm/chatrelay/internal/room"
)

var (
	// ErrEmptyBody is returned when a message body is empty
	ErrEmptyBody = errors.New("message body cannot be empty")
	// ErrInvalidParticipant is returned when sender or receiver is not a valid identity
	ErrInvalidParticipant = errors.New("sender and receiver must be positive identities")
)

// Store is the persistence boundary for relayed messages.
// The relay calls SaveMessage before any fan-out; history queries
// back the REST endpoints.
type Store interface {
	SaveMessage(ctx context.Context, sender, receiver room.Identity, body string) error
	RecentByRoom(ctx context.Context, id room.ID, limit int) ([]Record, error)
	CountByRoom(ctx context.Context, id room.ID) (int64, error)
}

// Record is a persisted chat message.
type Record struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Sender   int64              `bson:"sender"`
	Receiver int64              `bson:"receiver"`
	Room     string             `bson:"room"`
	Body     string             `bson:"body"`
	SentAt   time.Time          `bson:"ts"`
}

// retryConfig holds configuration for MongoDB retry logic
type retryConfig struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// defaultRetryConfig provides default retry configuration
var defaultRetryConfig = retryConfig{
	maxAttempts:  constants.MaxRetryAttempts,
	initialDelay: constants.InitialRetryDelay,
	maxDelay:     constants.MaxRetryDelay,
	multiplier:   constants.RetryMultiplier,
}

// MongoStore implements Store on top of a gomongo collection.
type MongoStore struct {
	mongo      *gomongo.Mongo
	collection *gomongo.MongoCollection
	logger     *golog.Logger
}

// NewMongoStore creates a message store backed by MongoDB.
//
// mongo: gomongo.Mongo instance (from gomongo.InitMongoDB)
// dbName: database name
// collName: collection name
// logger: golog.Logger instance for logging
func NewMongoStore(mongo *gomongo.Mongo, dbName, collName string, logger *golog.Logger) *MongoStore {
	return &MongoStore{
		mongo:      mongo,
		collection: mongo.Coll(dbName, collName),
		logger:     logger,
	}
}

// isRetryableError checks if an error is retryable (transient)
// Returns true for network errors and transient MongoDB errors
func isRetryableError(err error) bool {
	// No else needed: early return pattern (guard clause)
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Network errors
	if containsAny(errStr, []string{
		"connection refused",
		"connection reset",
		"timeout",
		"temporary failure",
		"i/o timeout",
		"EOF",
	}) {
		return true
	}

	// MongoDB specific transient errors
	if containsAny(errStr, []string{
		"server selection timeout",
		"no reachable servers",
		"connection pool",
		"socket",
	}) {
		return true
	}

	return false
}

// containsAny checks if a string contains any of the given substrings
func containsAny(s string, substrings []string) bool {
	for _, substr := range substrings {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

// EnsureIndexes creates the necessary indexes for the messages collection.
// This should be called during application initialization to ensure optimal query performance.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	// Compound index for room history queries (room + ts descending)
	roomSentAtIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: constants.MongoFieldRoom, Value: 1},
			{Key: constants.MongoFieldSentAt, Value: -1},
		},
		Options: options.Index().SetName(constants.IndexRoomSentAt),
	}

	// Index for per-sender queries
	senderIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: constants.MongoFieldSender, Value: 1}},
		Options: options.Index().SetName(constants.IndexSender),
	}

	indexes := []mongo.IndexModel{roomSentAtIndex, senderIndex}

	_, err := s.collection.CreateIndexes(ctx, indexes)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	s.logger.Info("MongoDB indexes created successfully",
		"indexes", []string{constants.IndexRoomSentAt, constants.IndexSender},
	)

	return nil
}

// SaveMessage appends one chat message to the collection.
// The room is derived from the participant pair so the stored document is
// self-describing for history queries.
func (s *MongoStore) SaveMessage(ctx context.Context, sender, receiver room.Identity, body string) error {
	// No else needed: early return pattern (guard clause)
	if sender <= 0 || receiver <= 0 {
		return ErrInvalidParticipant
	}

	// No else needed: early return pattern (guard clause)
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}

	start := time.Now()
	defer func() {
		metrics.MongoDBOperationDuration.With(prometheus.Labels{"operation": "save_message"}).Observe(time.Since(start).Seconds())
	}()

	rec := &Record{
		Sender:   int64(sender),
		Receiver: int64(receiver),
		Room:     string(room.Derive(sender, receiver)),
		Body:     body,
		SentAt:   time.Now().UTC(),
	}

	// Insert document with retry logic for transient errors
	err := s.retryOperation(ctx, "SaveMessage", func() error {
		_, err := s.collection.InsertOne(ctx, rec)
		return err
	})

	// No else needed: early return pattern (guard clause)
	if err != nil {
		metrics.PersistFailures.Inc()
		return fmt.Errorf("failed to save message: %w", err)
	}

	metrics.MessagesPersisted.Inc()

	return nil
}

// RecentByRoom retrieves the most recent messages for a room, newest first.
// The limit parameter controls the maximum number of messages to return.
// If limit <= 0, defaults to constants.DefaultHistoryLimit to prevent unbounded queries.
func (s *MongoStore) RecentByRoom(ctx context.Context, id room.ID, limit int) ([]Record, error) {
	if id == "" {
		return nil, errors.New("room ID cannot be empty")
	}

	start := time.Now()
	defer func() {
		metrics.MongoDBOperationDuration.With(prometheus.Labels{"operation": "recent_by_room"}).Observe(time.Since(start).Seconds())
	}()

	// Default to safe limit to prevent unbounded queries
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	if limit > constants.MaxHistoryLimit {
		limit = constants.MaxHistoryLimit
	}

	filter := bson.M{constants.MongoFieldRoom: string(id)}

	queryOpts := gomongo.QueryOptions{
		Sort:  bson.D{{Key: constants.MongoFieldSentAt, Value: -1}},
		Limit: int64(limit),
	}

	cursor, err := s.collection.Find(ctx, filter, queryOpts)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return nil, fmt.Errorf("failed to list room messages: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]Record, 0)
	for cursor.Next(ctx) {
		var rec Record
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode message document: %w", err)
		}
		records = append(records, rec)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}

	return records, nil
}

// CountByRoom returns the number of persisted messages in a room.
func (s *MongoStore) CountByRoom(ctx context.Context, id room.ID) (int64, error) {
	if id == "" {
		return 0, errors.New("room ID cannot be empty")
	}

	// Aggregation keeps the count server-side instead of streaming documents
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{constants.MongoFieldRoom: string(id)}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	// No else needed: early return pattern (guard clause)
	if err != nil {
		return 0, fmt.Errorf("failed to count room messages: %w", err)
	}
	defer cursor.Close(ctx)

	var result struct {
		Count int64 `bson:"count"`
	}

	// No else needed: optional operation (only decode if result exists)
	if cursor.Next(ctx) {
		// No else needed: early return pattern (guard clause)
		if err := cursor.Decode(&result); err != nil {
			return 0, fmt.Errorf("failed to decode aggregation result: %w", err)
		}
	}

	// No else needed: early return pattern (guard clause)
	if err := cursor.Err(); err != nil {
		return 0, fmt.Errorf("cursor error: %w", err)
	}

	return result.Count, nil
}

// retryOperation executes an operation with retry logic for transient errors
// Uses exponential backoff with configurable parameters
func (s *MongoStore) retryOperation(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	delay := defaultRetryConfig.initialDelay

	for attempt := 1; attempt <= defaultRetryConfig.maxAttempts; attempt++ {
		err := fn()
		// No else needed: early return pattern (guard clause - success case)
		if err == nil {
			return nil
		}

		// No else needed: early return pattern (guard clause - non-retryable error)
		if !isRetryableError(err) {
			return err
		}

		lastErr = err

		// No else needed: optional operation (only retry if attempts remain)
		if attempt < defaultRetryConfig.maxAttempts {
			s.logger.Warn("MongoDB operation failed, retrying",
				"operation", operation,
				"attempt", attempt,
				"max_attempts", defaultRetryConfig.maxAttempts,
				"delay", delay,
				"error", err)

			// Sleep with context awareness
			select {
			case <-time.After(delay):
				// Continue to next attempt
			case <-ctx.Done():
				return fmt.Errorf("operation cancelled during retry: %w", ctx.Err())
			}

			// Exponential backoff
			delay = time.Duration(float64(delay) * defaultRetryConfig.multiplier)
			// No else needed: optional operation (only cap if exceeds max)
			if delay > defaultRetryConfig.maxDelay {
				delay = defaultRetryConfig.maxDelay
			}
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w",
		defaultRetryConfig.maxAttempts, lastErr)
}
