// Package database handles the optional relational database behind the anomaly journal.
//
// It wraps GORM to open either MySQL (deployments) or SQLite (local runs and
// tests) from the database section of the configuration. When the connection
// fails the service keeps running and anomalies are only logged.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table for both dialects. The
// integrity feature uses it to verify that the journal table matches the
// model the reconciler writes.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Journal disabled", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "sync_anomalies")
package database
