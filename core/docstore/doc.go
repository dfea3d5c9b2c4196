// Package docstore connects to the remote document database (Cloud Firestore).
//
// Pin records and discussion board messages live in Firestore collections
// whose names come from configuration. This package only builds the client;
// the collections are read and written by the mapview, pins and board features.
//
// Credentials resolve in this order: emulator host (no credentials), an
// explicit service account file, then Application Default Credentials.
package docstore
