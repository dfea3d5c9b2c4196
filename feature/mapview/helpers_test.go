package mapview

import (
	"context"
	"sync"
	"testing"

	"crowdmarks/core/database"
	"crowdmarks/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// fakeSource replays a fixed list of events, then fails, blocks or returns.
type fakeSource struct {
	events []reconcile.Event
	err    error
	block  bool
}

func (f *fakeSource) Subscribe(ctx context.Context, out chan<- reconcile.Event, sink reconcile.Sink) error {
	for _, ev := range f.events {
		select {
		case out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
	if f.err != nil {
		sink.Report(reconcile.Anomaly{Kind: reconcile.ListenerFailure, Err: f.err})
		return f.err
	}
	if f.block {
		<-ctx.Done()
	}
	return nil
}

type recordingSink struct {
	mu        sync.Mutex
	anomalies []reconcile.Anomaly
}

func (s *recordingSink) Report(a reconcile.Anomaly) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalies = append(s.anomalies, a)
}

func (s *recordingSink) all() []reconcile.Anomaly {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]reconcile.Anomaly(nil), s.anomalies...)
}

func pinEvent(kind reconcile.Kind, id, name string, lat, lon float64) reconcile.Event {
	return reconcile.Event{Kind: kind, Record: reconcile.Record{
		ID:          id,
		Name:        name,
		Description: name + " description",
		Coordinate:  reconcile.Coordinate{Latitude: lat, Longitude: lon},
	}}
}

func setupSQLiteJournal(t *testing.T) *Journal {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	j := NewJournal(db, zap.NewNop())
	require.NoError(t, j.Migrate())
	return j
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func newTestService(t *testing.T, src Source, journal *Journal) *Service {
	svc, err := NewService(src, reconcile.Config{MatchMode: "id", EventBuffer: 8}, journal, zap.NewNop())
	require.NoError(t, err)
	return svc
}
