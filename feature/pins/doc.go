// Package pins implements pin submission.
//
// A submission carries a name, a description, a coordinate and an optional
// photo. The photo is uploaded to the blob store under images/<uuid>.jpg and
// the Pin record is written to the remote collection, where the map listener
// picks it up like any other change.
//
// # HTTP Endpoints
//
//   - POST /pins : Multipart form (name, description, latitude, longitude, image).
//   - GET /pins/image?ref= : Redirects to a presigned URL for a pin photo.
package pins
