// Package integrity provides deployment health checks.
//
// # Checks Provided
//
//   - Structure: The configured bucket exists and contains the images/ folder pin photos are uploaded to.
//   - Journal: The connected database has the sync_anomalies table with every column the map sync writes.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/structure : Runs structure check (supports ?fix=true).
//   - GET /integrity/journal : Runs journal schema check (supports ?fix=true).
package integrity
