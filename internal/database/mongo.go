package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store bundles the Mongo client with the collections the application uses.
// The client is shared process-wide; per-request transactional state lives in
// sessions acquired by the atomic coordinator, never here.
type Store struct {
	Client   *mongo.Client
	Users    *mongo.Collection
	Products *mongo.Collection
	Comments *mongo.Collection
}

// Open connects to MongoDB, verifies the connection and prepares the
// collection handles. Multi-document transactions require the server to run
// as a replica set; that is an operational concern, not checked here.
func Open(uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	db := client.Database(dbName)
	return &Store{
		Client:   client,
		Users:    db.Collection("users"),
		Products: db.Collection("products"),
		Comments: db.Collection("comments"),
	}, nil
}

// EnsureIndexes creates the unique email index backing the duplicate-signup
// check. Safe to call on every startup; index creation is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.Users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}
