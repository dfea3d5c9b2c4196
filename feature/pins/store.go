package pins

import (
	"context"
	"fmt"

	"crowdmarks/core/reconcile"

	"cloud.google.com/go/firestore"
)

// Store persists new Pin records in the remote collection.
type Store interface {
	// Create writes rec with a server-assigned timestamp and returns the document ID.
	Create(ctx context.Context, rec reconcile.Record) (string, error)
}

// FirestoreStore writes pins to a Firestore collection.
type FirestoreStore struct {
	col *firestore.CollectionRef
}

// NewFirestoreStore creates a store over the named collection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{col: client.Collection(collection)}
}

// Create adds a new document with an auto-generated ID.
func (s *FirestoreStore) Create(ctx context.Context, rec reconcile.Record) (string, error) {
	data := rec.Encode()
	data[reconcile.FieldCreatedAt] = firestore.ServerTimestamp

	ref, _, err := s.col.Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("failed to write pin: %w", err)
	}
	return ref.ID, nil
}
