package mapview

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"crowdmarks/core/reconcile"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestJournal_ReportAndRecent(t *testing.T) {
	j := setupSQLiteJournal(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ev := pinEvent(reconcile.Removed, "doc-9", "Ghost", 42.36, -71.06)
	j.Report(reconcile.Anomaly{
		Kind:  reconcile.NoMatchingAnnotation,
		Event: &ev,
		Err:   errors.New("no annotation matches removed event"),
		At:    at,
	})
	j.Report(reconcile.Anomaly{
		Kind: reconcile.ListenerFailure,
		Err:  errors.New("permission denied"),
	})

	entries, err := j.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, string(reconcile.ListenerFailure), entries[0].Kind)
	assert.Empty(t, entries[0].DocumentID)
	assert.False(t, entries[0].CreatedAt.IsZero())

	assert.Equal(t, string(reconcile.NoMatchingAnnotation), entries[1].Kind)
	assert.Equal(t, "doc-9", entries[1].DocumentID)
	assert.Equal(t, "removed", entries[1].EventKind)
	assert.Equal(t, 42.36, entries[1].Latitude)
	assert.Equal(t, -71.06, entries[1].Longitude)
	assert.Contains(t, entries[1].Detail, "no annotation matches")
	assert.True(t, at.Equal(entries[1].CreatedAt.UTC()))
}

func TestJournal_RecentLimit(t *testing.T) {
	j := setupSQLiteJournal(t)
	for i := 0; i < 5; i++ {
		j.Report(reconcile.Anomaly{Kind: reconcile.ApplyFailure, Err: errors.New("panic")})
	}

	entries, err := j.Recent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestEntryFrom_FieldsAndTruncation(t *testing.T) {
	e := entryFrom(reconcile.Anomaly{
		Kind:   reconcile.MalformedRecord,
		Fields: []string{"latitude"},
		Err:    errors.New("bad"),
	})
	assert.Equal(t, "bad (fields: [latitude])", e.Detail)

	long := entryFrom(reconcile.Anomaly{Kind: reconcile.ApplyFailure, Err: errors.New(strings.Repeat("x", 2000))})
	assert.Len(t, long.Detail, 1024)
}

func TestJournal_WriteFailureIsLogged(t *testing.T) {
	db, mock := setupMockDB(t)
	core, logs := observer.New(zapcore.WarnLevel)
	j := NewJournal(db, zap.New(core))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `sync_anomalies`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	assert.NotPanics(t, func() {
		j.Report(reconcile.Anomaly{Kind: reconcile.ListenerFailure, Err: errors.New("gone")})
	})

	require.Equal(t, 1, logs.FilterMessage("Failed to journal anomaly").Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_RecentQueryFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	j := NewJournal(db, zap.NewNop())

	mock.ExpectQuery("SELECT \\* FROM `sync_anomalies`").WillReturnError(assert.AnError)

	_, err := j.Recent(context.Background(), 5)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJournal_RecentRows(t *testing.T) {
	db, mock := setupMockDB(t)
	j := NewJournal(db, zap.NewNop())

	rows := sqlmock.NewRows(JournalColumns).
		AddRow(7, "no_matching_annotation", "doc-1", "modified", 1.5, 2.5, "detail", time.Now())
	mock.ExpectQuery("SELECT \\* FROM `sync_anomalies` ORDER BY id DESC LIMIT").WillReturnRows(rows)

	entries, err := j.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint(7), entries[0].ID)
	assert.Equal(t, "doc-1", entries[0].DocumentID)
}
