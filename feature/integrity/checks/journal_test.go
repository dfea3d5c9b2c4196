package checks

import (
	"testing"

	"crowdmarks/core/database"
	"crowdmarks/feature/mapview"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

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

func TestCheckJournal_NoDatabase(t *testing.T) {
	_, err := CheckJournal(nil)
	assert.ErrorIs(t, err, ErrNoDatabase)
	assert.ErrorIs(t, FixJournal(nil), ErrNoDatabase)
}

func TestCheckJournal_SQLite(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	report, err := CheckJournal(db)
	require.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Len(t, report.Missing, len(mapview.JournalColumns))

	require.NoError(t, FixJournal(db))

	report, err = CheckJournal(db)
	require.NoError(t, err)
	assert.True(t, report.Healthy)
	assert.Empty(t, report.Missing)
	assert.Equal(t, "sync_anomalies", report.Table)
}

func TestCheckJournal_MySQLPartial(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "bigint unsigned", "NO", "PRI", nil, "auto_increment").
		AddRow("kind", "varchar(32)", "YES", "MUL", nil, "").
		AddRow("created_at", "datetime(3)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `sync_anomalies`").WillReturnRows(rows)

	report, err := CheckJournal(db)
	require.NoError(t, err)
	assert.False(t, report.Healthy)
	assert.Equal(t, []string{"detail", "document_id", "event_kind", "latitude", "longitude"}, report.Missing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckJournal_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS").WillReturnError(assert.AnError)

	_, err := CheckJournal(db)
	assert.ErrorIs(t, err, assert.AnError)
}
