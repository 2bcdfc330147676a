package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStore keeps one document per customer, keyed by customer id, with a
// version field used for compare-and-swap updates.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{collection: db.Collection(collection)}
}

func (s *MongoStore) Get(ctx context.Context, customerID string) (*storefront.Cart, error) {
	var c storefront.Cart
	err := s.collection.FindOne(ctx, bson.M{"_id": customerID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	if c.Items == nil {
		c.Items = []storefront.CartLineItem{}
	}
	return &c, nil
}

func (s *MongoStore) Save(ctx context.Context, c *storefront.Cart) error {
	now := time.Now().UTC()
	items := c.Items
	if items == nil {
		items = []storefront.CartLineItem{}
	}

	if c.Version == 0 {
		doc := storefront.Cart{CustomerID: c.CustomerID, Items: items, Version: 1, UpdatedAt: now}
		if _, err := s.collection.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("insert cart: %w", err)
		}
		c.Version, c.UpdatedAt = 1, now
		return nil
	}

	res, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": c.CustomerID, "version": c.Version},
		bson.M{
			"$set": bson.M{"items": items, "updated_at": now},
			"$inc": bson.M{"version": 1},
		},
	)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	c.Version++
	c.UpdatedAt = now
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, customerID string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": customerID}); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteIfVersion(ctx context.Context, customerID string, version int64) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": customerID, "version": version})
	if err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	if res.DeletedCount > 0 {
		return nil
	}
	n, err := s.collection.CountDocuments(ctx, bson.M{"_id": customerID})
	if err != nil {
		return fmt.Errorf("count cart: %w", err)
	}
	if n > 0 {
		return ErrVersionConflict
	}
	return nil
}
