//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageDocument mirrors the chat_messages schema with its short bson field names
type MessageDocument struct {
	Sender   int64     `bson:"sender"`
	Receiver int64     `bson:"receiver"`
	Room     string    `bson:"room"`
	Body     string    `bson:"body"`
	SentAt   time.Time `bson:"ts"`
}

func main() {
	fmt.Println("=== MongoDB Field Naming Verification ===")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI("mongodb://127.0.0.1:27017")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("Failed to disconnect: %v", err)
		}
	}()

	coll := client.Database("chat").Collection("chat_messages")

	// Insert a probe document through the typed struct
	probe := MessageDocument{
		Sender:   7,
		Receiver: 12,
		Room:     "chat_7_12",
		Body:     "field naming probe",
		SentAt:   time.Now().UTC(),
	}
	res, err := coll.InsertOne(ctx, probe)
	if err != nil {
		log.Fatalf("Failed to insert probe document: %v", err)
	}
	defer func() {
		if _, err := coll.DeleteOne(ctx, bson.M{"_id": res.InsertedID}); err != nil {
			log.Printf("Failed to clean up probe document: %v", err)
		}
	}()

	// Read it back raw and verify the wire field names
	var raw bson.M
	if err := coll.FindOne(ctx, bson.M{"_id": res.InsertedID}).Decode(&raw); err != nil {
		log.Fatalf("Failed to read probe document: %v", err)
	}

	expected := []string{"sender", "receiver", "room", "body", "ts"}
	ok := true
	for _, field := range expected {
		if _, present := raw[field]; present {
			fmt.Printf("  ok: %s\n", field)
		} else {
			fmt.Printf("  MISSING: %s\n", field)
			ok = false
		}
	}

	if !ok {
		log.Fatal("Field naming verification FAILED")
	}
	fmt.Println("Field naming verification PASSED")
}
