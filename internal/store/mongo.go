package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const snapshotDocID = "snapshot"

// MongoConfig defines the connection settings for the mongo backend.
type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// MongoBackend keeps the snapshot blob in a single upserted document, as an
// alternative to the local file for deployments without a durable disk.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type snapshotDoc struct {
	ID        string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoBackend connects to MongoDB and verifies the connection.
func NewMongoBackend(cfg MongoConfig) (*MongoBackend, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("MongoDB URI cannot be empty")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database name cannot be empty")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoBackend{
		client: client,
		coll:   client.Database(cfg.Database).Collection("snapshots"),
	}, nil
}

func (b *MongoBackend) Load(ctx context.Context) ([]byte, error) {
	var doc snapshotDoc
	err := b.coll.FindOne(ctx, bson.M{"_id": snapshotDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot document: %w", err)
	}
	return doc.Data, nil
}

func (b *MongoBackend) Save(ctx context.Context, data []byte) error {
	doc := snapshotDoc{ID: snapshotDocID, Data: data, UpdatedAt: time.Now()}
	_, err := b.coll.ReplaceOne(ctx, bson.M{"_id": snapshotDocID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot document: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (b *MongoBackend) Close(ctx context.Context) error {
	if b.client == nil {
		return nil
	}
	return b.client.Disconnect(ctx)
}
