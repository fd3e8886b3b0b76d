package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("document not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

// Collections of per-identity state.
const (
	CollectionCart      = "cart"
	CollectionWishlist  = "wishlist"
	CollectionAddresses = "addresses"
	CollectionOrders    = "orders"
)

// ScopeKey isolates one identity's document within a collection.
type ScopeKey struct {
	Collection string
	UserID     string
}

func (k ScopeKey) String() string {
	return fmt.Sprintf("%s_%s", k.Collection, k.UserID)
}

// Store loads and saves serialized documents. Load returns ErrNotFound when
// nothing was saved under the key yet.
type Store interface {
	Load(ctx context.Context, key ScopeKey) ([]byte, error)
	Save(ctx context.Context, key ScopeKey, doc []byte) error
}

// LoadJSON decodes the document under key into a T. found is false when the
// store had nothing for the key.
func LoadJSON[T any](ctx context.Context, s Store, key ScopeKey) (doc T, found bool, err error) {
	data, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return doc, false, nil
	}
	if err != nil {
		return doc, false, fmt.Errorf("load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return doc, true, nil
}

func SaveJSON[T any](ctx context.Context, s Store, key ScopeKey, doc T) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.Save(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
