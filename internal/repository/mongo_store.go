package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// cartTTL drops abandoned carts; other collections are kept forever.
const cartTTL = 90 * 24 * time.Hour

type mongoDocument struct {
	ID         string    `bson:"_id"`
	Collection string    `bson:"collection"`
	UserID     string    `bson:"user_id"`
	Payload    bson.Raw  `bson:"payload"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// MongoStore is the remote document persistence. Payloads are stored as
// native BSON documents so they stay queryable; every payload must be a JSON
// object.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		collection: db.Collection("storefront_documents"),
	}
}

func (m *MongoStore) Load(ctx context.Context, key ScopeKey) ([]byte, error) {
	var doc mongoDocument

	err := m.collection.FindOne(ctx, bson.M{"_id": key.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	data, err := bson.MarshalExtJSON(doc.Payload, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document to json: %w", err)
	}
	return data, nil
}

func (m *MongoStore) Save(ctx context.Context, key ScopeKey, data []byte) error {
	var payload bson.D
	if err := bson.UnmarshalExtJSON(data, false, &payload); err != nil {
		return fmt.Errorf("failed to convert json to document: %w", err)
	}

	filter := bson.M{"_id": key.String()}
	update := bson.M{"$set": bson.M{
		"collection": key.Collection,
		"user_id":    key.UserID,
		"payload":    payload,
		"updated_at": time.Now(),
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := m.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

func (m *MongoStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "collection", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(int32(cartTTL.Seconds())).
				SetPartialFilterExpression(bson.M{"collection": CollectionCart}),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
