// Package mapview serves the live map.
//
// A Source (Firestore in production) streams the change events of the pin
// collection into a reconcile.Reconciler. The resulting annotations are
// served over HTTP and every committed mutation is pushed to live-stream
// subscribers through a Broadcaster. Anomalies go to the log and, when a
// database is connected, to the sync_anomalies journal.
//
// # HTTP Endpoints
//
//   - GET /map/annotations : Lists annotations (supports ?bbox= or ?lat=&lon=&radius=).
//   - GET /map/annotations/:id : Returns one annotation by pin document ID.
//   - GET /map/geojson : Same listing as a GeoJSON FeatureCollection.
//   - GET /map/stream : Server-sent events, a snapshot followed by mutations.
//   - GET /map/anomalies : Recent journaled anomalies (?limit=).
//   - GET /map/stats : Sync counters.
package mapview
