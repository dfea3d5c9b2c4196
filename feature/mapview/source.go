package mapview

import (
	"context"
	"errors"
	"fmt"

	"crowdmarks/core/reconcile"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Source delivers the change events of the remote Pin collection.
// Subscribe blocks until ctx is cancelled or the subscription fails.
// It never closes out; the caller does.
type Source interface {
	Subscribe(ctx context.Context, out chan<- reconcile.Event, sink reconcile.Sink) error
}

// FirestoreSource listens to a Firestore collection.
type FirestoreSource struct {
	query      firestore.Query
	collection string
	logger     *zap.Logger
}

// NewFirestoreSource creates a source over the named collection.
func NewFirestoreSource(client *firestore.Client, collection string, logger *zap.Logger) *FirestoreSource {
	return &FirestoreSource{
		query:      client.Collection(collection).Query,
		collection: collection,
		logger:     logger,
	}
}

// Subscribe streams document changes into out. The first snapshot delivers
// every existing document as Added. Transient stream errors are retried by
// the SDK; an error surfacing from the iterator is terminal.
func (s *FirestoreSource) Subscribe(ctx context.Context, out chan<- reconcile.Event, sink reconcile.Sink) error {
	it := s.query.Snapshots(ctx)
	defer it.Stop()

	s.logger.Info("Listening for pin changes", zap.String("collection", s.collection))

	for {
		snap, err := it.Next()
		if err != nil {
			if isCancellation(ctx, err) {
				return nil
			}
			sink.Report(reconcile.Anomaly{Kind: reconcile.ListenerFailure, Err: err})
			return fmt.Errorf("listen on %s: %w", s.collection, err)
		}

		for _, change := range snap.Changes {
			ev, ok := EventFromChange(change.Kind, change.Doc.Ref.ID, change.Doc.Data(), sink)
			if !ok {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// EventFromChange converts one document change. Malformed records are
// reported and still converted with defaults.
func EventFromChange(kind firestore.DocumentChangeKind, id string, data map[string]any, sink reconcile.Sink) (reconcile.Event, bool) {
	k, ok := changeKind(kind)
	if !ok {
		sink.Report(reconcile.Anomaly{
			Kind: reconcile.MalformedRecord,
			Err:  fmt.Errorf("unknown change kind %d for document %s", int(kind), id),
		})
		return reconcile.Event{}, false
	}

	rec, problems := reconcile.DecodeRecord(id, data)
	ev := reconcile.Event{Kind: k, Record: rec}
	if len(problems) > 0 {
		sink.Report(reconcile.Anomaly{
			Kind:   reconcile.MalformedRecord,
			Event:  &ev,
			Fields: problems,
			Err:    fmt.Errorf("document %s has missing or invalid fields", id),
		})
	}
	return ev, true
}

func changeKind(kind firestore.DocumentChangeKind) (reconcile.Kind, bool) {
	switch kind {
	case firestore.DocumentAdded:
		return reconcile.Added, true
	case firestore.DocumentModified:
		return reconcile.Modified, true
	case firestore.DocumentRemoved:
		return reconcile.Removed, true
	}
	return 0, false
}

func isCancellation(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, iterator.Done) || errors.Is(err, context.Canceled) {
		return true
	}
	return status.Code(err) == codes.Canceled
}
