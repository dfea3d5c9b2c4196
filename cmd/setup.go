package cmd

import (
	"context"
	"fmt"

	"crowdmarks/core/config"
	"crowdmarks/core/database"
	"crowdmarks/core/docstore"
	"crowdmarks/core/logger"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// loadRuntime loads the configuration and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logg, nil
}

// connectJournal connects the optional anomaly journal database.
func connectJournal(cfg *config.Config, logg *zap.Logger) *gorm.DB {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
		return nil
	}
	logg.Info("Connected to journal database", zap.String("driver", db.Dialector.Name()))
	return db
}

// connectDocstore creates the Firestore client.
func connectDocstore(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*firestore.Client, error) {
	client, err := docstore.Connect(ctx, cfg.Docstore, logg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}
	return client, nil
}
