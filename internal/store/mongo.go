// backend/internal/store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bolagsplatsen-sys/backend/internal/domain"
)

const snapshotCollection = "snapshots"

// mongoDocument mirrors snapshotDocument for the mongo backend; the
// latest snapshot lives under a fixed _id so publishing is one upsert.
type mongoDocument struct {
	ID                 string                    `bson:"_id"`
	CompletedAt        time.Time                 `bson:"completed_at"`
	SourcePagesVisited int                       `bson:"source_pages_visited"`
	Order              []string                  `bson:"order"`
	Listings           map[string]domain.Listing `bson:"listings"`
}

// MongoStore persists snapshots to MongoDB and serves reads from memory.
type MongoStore struct {
	mem    MemoryStore
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(snapshotCollection),
	}, nil
}

func (s *MongoStore) Latest() (domain.Snapshot, error) {
	return s.mem.Latest()
}

func (s *MongoStore) Publish(ctx context.Context, snap domain.Snapshot) error {
	doc := toDocument(snap)
	mdoc := mongoDocument{
		ID:                 "latest",
		CompletedAt:        doc.CompletedAt,
		SourcePagesVisited: doc.SourcePagesVisited,
		Order:              doc.Order,
		Listings:           doc.Listings,
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": mdoc.ID}, mdoc, opts); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return s.mem.Publish(ctx, snap)
}

func (s *MongoStore) Load(ctx context.Context) error {
	var mdoc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": "latest"}).Decode(&mdoc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	return s.mem.Publish(ctx, fromDocument(snapshotDocument{
		CompletedAt:        mdoc.CompletedAt,
		SourcePagesVisited: mdoc.SourcePagesVisited,
		Order:              mdoc.Order,
		Listings:           mdoc.Listings,
	}))
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
