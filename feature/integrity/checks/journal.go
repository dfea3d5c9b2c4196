package checks

import (
	"errors"

	"crowdmarks/core/database"
	"crowdmarks/feature/mapview"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoDatabase is returned when the journal check runs without a database.
var ErrNoDatabase = errors.New("database not connected")

// JournalReport is the result of the journal schema check.
type JournalReport struct {
	Table   string   `json:"table"`
	Missing []string `json:"missing"`
	Healthy bool     `json:"healthy"`
}

// CheckJournal verifies that the anomaly journal table has every column the
// map sync writes.
func CheckJournal(db *gorm.DB) (*JournalReport, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}

	missing, err := database.MissingColumns(db, mapview.JournalTable, mapview.JournalColumns)
	if err != nil {
		return nil, err
	}

	return &JournalReport{
		Table:   mapview.JournalTable,
		Missing: missing,
		Healthy: len(missing) == 0,
	}, nil
}

// FixJournal creates or migrates the journal table.
func FixJournal(db *gorm.DB) error {
	if db == nil {
		return ErrNoDatabase
	}
	return mapview.NewJournal(db, zap.NewNop()).Migrate()
}
