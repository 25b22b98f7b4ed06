package dedup

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newsscraper/internal/config"
	"newsscraper/pkg/models"
)

// MongoStore persists articles keyed by the hash of their canonical URL.
// The unique _id makes concurrent inserts of the same key resolve to one
// winner at the database.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

type articleDocument struct {
	ID          string         `bson:"_id"`
	IdentityKey string         `bson:"identity_key"`
	Fingerprint string         `bson:"fingerprint"`
	Article     models.Article `bson:"article"`
	StoredAt    time.Time      `bson:"stored_at"`
}

// NewMongoStore connects to the configured database.
func NewMongoStore(ctx context.Context, cfg config.StoreConfig) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping store: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Exists reports whether the identity key is already stored.
func (s *MongoStore) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"_id": KeyID(key)})
	if err != nil {
		return false, fmt.Errorf("count documents: %w", err)
	}
	return count > 0, nil
}

// Insert stores the article; ErrConflict when the key raced in first.
func (s *MongoStore) Insert(ctx context.Context, key string, fingerprint string, article models.Article) error {
	doc := articleDocument{
		ID:          KeyID(key),
		IdentityKey: key,
		Fingerprint: fingerprint,
		Article:     article,
		StoredAt:    time.Now().UTC(),
	}

	_, err := s.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// Close disconnects from the database.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
