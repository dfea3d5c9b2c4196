package integrity

import (
	"context"

	"crowdmarks/core/storage"
	"crowdmarks/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
	db     *gorm.DB
}

// NewService creates a new integrity service. db may be nil.
func NewService(client storage.Client, cfg storage.Config, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
		db:     db,
	}
}

// CheckStructure returns a list of missing folders.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	return checks.CheckStructure(ctx, s.client, s.bucket)
}

// FixStructure creates the bucket if needed, then the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if err := checks.EnsureBucket(ctx, s.client, s.bucket, s.region, s.logger); err != nil {
		return err
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckJournal validates the anomaly journal schema.
func (s *Service) CheckJournal() (*checks.JournalReport, error) {
	return checks.CheckJournal(s.db)
}

// FixJournal migrates the anomaly journal table.
func (s *Service) FixJournal() error {
	return checks.FixJournal(s.db)
}
