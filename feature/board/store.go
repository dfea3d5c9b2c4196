package board

import (
	"context"
	"fmt"

	"crowdmarks/core/utils"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const (
	fieldText      = "text"
	fieldTimestamp = "timestamp"
)

// Store persists board messages.
type Store interface {
	// Add writes a message with a server-assigned timestamp and returns its ID.
	Add(ctx context.Context, text string) (string, error)
	// List returns up to limit messages, oldest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Message, error)
}

// FirestoreStore keeps messages in a Firestore collection.
type FirestoreStore struct {
	col *firestore.CollectionRef
}

// NewFirestoreStore creates a store over the named collection.
func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	return &FirestoreStore{col: client.Collection(collection)}
}

// Add implements Store.
func (s *FirestoreStore) Add(ctx context.Context, text string) (string, error) {
	ref, _, err := s.col.Add(ctx, map[string]any{
		fieldText:      text,
		fieldTimestamp: firestore.ServerTimestamp,
	})
	if err != nil {
		return "", fmt.Errorf("failed to write message: %w", err)
	}
	return ref.ID, nil
}

// List implements Store. The newest messages are kept when limit cuts the list.
func (s *FirestoreStore) List(ctx context.Context, limit int) ([]Message, error) {
	q := s.col.OrderBy(fieldTimestamp, firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var out []Message
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		out = append(out, messageFrom(doc.Ref.ID, doc.Data()))
	}

	// Oldest first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func messageFrom(id string, data map[string]any) Message {
	m := Message{ID: id}
	m.Text, _ = utils.AsString(data[fieldText])
	// A pending server timestamp reads back as missing.
	m.Timestamp, _ = utils.AsTime(data[fieldTimestamp])
	return m
}
