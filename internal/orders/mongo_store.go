package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// document is the stored form of an order; the amount is kept as a decimal
// string so no precision is lost.
type document struct {
	OrderID    string                    `bson:"_id,omitempty"`
	CustomerID string                    `bson:"customer_id"`
	Amount     string                    `bson:"amount"`
	TxnID      string                    `bson:"txn_id"`
	Status     string                    `bson:"status"`
	Items      []storefront.CartLineItem `bson:"items"`
	CreatedAt  time.Time                 `bson:"created_at"`
}

type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	return &MongoStore{collection: db.Collection(collection)}
}

func (s *MongoStore) CreateIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "customer_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create order indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, o *storefront.Order) error {
	doc := toDocument(o)
	doc.OrderID = "" // taken from the filter on insert
	_, err := s.collection.UpdateOne(ctx,
		bson.M{"_id": o.OrderID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, orderID string) (*storefront.Order, error) {
	var doc document
	err := s.collection.FindOne(ctx, bson.M{"_id": orderID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	o := fromDocument(doc)
	return &o, nil
}

func (s *MongoStore) ListByCustomer(ctx context.Context, customerID string) ([]storefront.Order, error) {
	cur, err := s.collection.Find(ctx,
		bson.M{"customer_id": customerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find orders: %w", err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	out := make([]storefront.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDocument(d))
	}
	return out, nil
}

func (s *MongoStore) DeleteByCustomer(ctx context.Context, customerID string) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"customer_id": customerID}); err != nil {
		return fmt.Errorf("delete orders: %w", err)
	}
	return nil
}

func toDocument(o *storefront.Order) document {
	return document{
		OrderID:    o.OrderID,
		CustomerID: o.CustomerID,
		Amount:     o.Amount.String(),
		TxnID:      o.TxnID,
		Status:     string(o.Status),
		Items:      o.Items,
		CreatedAt:  o.CreatedAt,
	}
}

func fromDocument(d document) storefront.Order {
	amount, err := decimal.NewFromString(d.Amount)
	if err != nil {
		amount = decimal.Zero
	}
	return storefront.Order{
		OrderID:    d.OrderID,
		CustomerID: d.CustomerID,
		Amount:     amount,
		TxnID:      d.TxnID,
		Status:     storefront.Status(d.Status),
		Items:      d.Items,
		CreatedAt:  d.CreatedAt,
	}
}
