// Package logger provides a structured logging facility based on Zap.
//
// New builds a *zap.Logger from the log section of the configuration. The
// reconciler, the change listener and the feature services all receive that
// logger explicitly; nothing in CrowdMarks logs through a package global
// except the start command, which installs it with zap.ReplaceGlobals.
//
// # Request Correlation
//
// Every HTTP request gets a RayID from the rayid middleware. WithRayID pulls it
// from the Fiber locals so that handler logs can be joined with the access log.
//
// # Configuration
//
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&cfg.Log)
//	log.Info("Listener started", zap.String("collection", "markers"))
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Submission failed", zap.Error(err))
package logger
