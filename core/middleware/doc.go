// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation (X-API-Key header or Bearer token).
//   - rayid: per-request RayID, reused from X-Ray-ID when present, stored in
//     the Fiber locals and echoed in the response.
package middleware
