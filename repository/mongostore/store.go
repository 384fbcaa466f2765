// store.go - MongoDB backed store

package mongostore

import (
	"context"
	"time"

	"go-market-backend/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection        = "users"
	productsCollection     = "products"
	entitlementsCollection = "entitlements"
	downloadsCollection    = "downloads"

	connectTimeout = 10 * time.Second
)

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Store = (*Store)(nil)

// Open connects to uri and selects database name. The connection is not
// verified until Ping.
func Open(ctx context.Context, uri, name string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, translateError(err)
	}
	return &Store{client: client, db: client.Database(name)}, nil
}

func (s *Store) users() *mongo.Collection        { return s.db.Collection(usersCollection) }
func (s *Store) products() *mongo.Collection     { return s.db.Collection(productsCollection) }
func (s *Store) entitlements() *mongo.Collection { return s.db.Collection(entitlementsCollection) }
func (s *Store) downloads() *mongo.Collection    { return s.db.Collection(downloadsCollection) }

// Migrate creates the indexes. Collections are created on first write.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.users(): {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		s.products(): {
			{Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		s.entitlements(): {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "productId", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.downloads(): {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
			{Keys: bson.D{{Key: "productId", Value: 1}}},
		},
	}
	for coll, idx := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, idx); err != nil {
			return translateError(err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return translateError(s.client.Ping(ctx, readpref.Primary()))
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
