package mapview

import (
	"context"
	"fmt"
	"time"

	"crowdmarks/core/reconcile"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JournalTable is the table the anomaly journal writes to.
const JournalTable = "sync_anomalies"

// JournalColumns lists the columns the journal relies on.
var JournalColumns = []string{
	"id", "kind", "document_id", "event_kind", "latitude", "longitude", "detail", "created_at",
}

// AnomalyEntry is one persisted anomaly.
type AnomalyEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Kind       string    `gorm:"size:32;index" json:"kind"`
	DocumentID string    `gorm:"size:128" json:"documentId,omitempty"`
	EventKind  string    `gorm:"size:16" json:"eventKind,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Detail     string    `gorm:"size:1024" json:"detail,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName implements gorm's tabler.
func (AnomalyEntry) TableName() string { return JournalTable }

// Journal is a reconcile.Sink that persists anomalies.
type Journal struct {
	db      *gorm.DB
	logger  *zap.Logger
	timeout time.Duration
}

// NewJournal creates a journal on db.
func NewJournal(db *gorm.DB, logger *zap.Logger) *Journal {
	return &Journal{db: db, logger: logger, timeout: 2 * time.Second}
}

// Migrate creates or updates the journal table.
func (j *Journal) Migrate() error {
	if err := j.db.AutoMigrate(&AnomalyEntry{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", JournalTable, err)
	}
	return nil
}

// Report implements reconcile.Sink. Write failures are logged, never raised.
func (j *Journal) Report(a reconcile.Anomaly) {
	entry := entryFrom(a)

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.db.WithContext(ctx).Create(&entry).Error; err != nil {
		j.logger.Warn("Failed to journal anomaly",
			zap.String("anomaly", entry.Kind),
			zap.Error(err))
	}
}

// Recent returns the newest entries first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]AnomalyEntry, error) {
	var entries []AnomalyEntry
	err := j.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list anomalies: %w", err)
	}
	return entries, nil
}

func entryFrom(a reconcile.Anomaly) AnomalyEntry {
	entry := AnomalyEntry{
		Kind:      string(a.Kind),
		CreatedAt: a.At,
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if a.Event != nil {
		entry.DocumentID = a.Event.Record.ID
		entry.EventKind = a.Event.Kind.String()
		entry.Latitude = a.Event.Record.Coordinate.Latitude
		entry.Longitude = a.Event.Record.Coordinate.Longitude
	}

	detail := ""
	if a.Err != nil {
		detail = a.Err.Error()
	}
	if len(a.Fields) > 0 {
		detail = fmt.Sprintf("%s (fields: %v)", detail, a.Fields)
	}
	if len(detail) > 1024 {
		detail = detail[:1024]
	}
	entry.Detail = detail
	return entry
}
