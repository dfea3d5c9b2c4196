// Package server holds the HTTP server configuration.
//
// The start command owns the Fiber app itself; this package only describes the
// listening port, the API key enforced by the auth middleware, and the request
// body limit that bounds photo uploads on POST /pins.
package server
