package wishlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type document struct {
	CustomerID string                       `bson:"_id"`
	Items      []storefront.ProductSnapshot `bson:"items"`
	UpdatedAt  time.Time                    `bson:"updated_at"`
}

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection("wishlists")}
}

func (s *MongoStore) Get(ctx context.Context, customerID string) ([]storefront.ProductSnapshot, error) {
	var doc document
	err := s.collection.FindOne(ctx, bson.M{"_id": customerID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []storefront.ProductSnapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find wishlist: %w", err)
	}
	if doc.Items == nil {
		doc.Items = []storefront.ProductSnapshot{}
	}
	return doc.Items, nil
}

func (s *MongoStore) Put(ctx context.Context, customerID string, items []storefront.ProductSnapshot) error {
	if items == nil {
		items = []storefront.ProductSnapshot{}
	}
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": customerID},
		bson.M{"$set": bson.M{"items": items, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert wishlist: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, customerID string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": customerID}); err != nil {
		return fmt.Errorf("delete wishlist: %w", err)
	}
	return nil
}
