// Package config loads the CrowdMarks configuration.
//
// Values come from a .env file (optional) and the environment, on top of the
// defaults declared in the `default` struct tags of each section. Keys are
// SECTION_FIELD in the environment, for example SERVER_PORT, STORAGE_BUCKET,
// DOCSTORE_PROJECT_ID or MAP_MATCH_MODE.
//
// # Sections
//
//   - Server: HTTP port, API key, upload limit
//   - Storage: S3/MinIO credentials and the photo bucket
//   - Docstore: Firestore project, credentials, collection names
//   - Database: optional anomaly journal (MySQL or SQLite)
//   - Map: reconciler match mode and event buffer
//   - Log: level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Docstore.PinsCollection)
package config
