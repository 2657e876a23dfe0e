// Package logging provides structured logging for the provisioning daemon.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the daemon. It provides both general logging
// functions and specialized functions for connectivity events.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (HTTP requests, DNS queries, link polls)
//   - Info: Normal operations (role transitions, join attempts, portal arming)
//   - Warn: Non-fatal issues (store write failures, dropped subscribers)
//   - Error: Fatal issues (startup failures, listener errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Connected to network",
//	    zap.String("identity", "home"),
//	    zap.String("address", "192.168.1.42"),
//	)
//
// # Configuration
//
// Initialize logging at daemon startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// When no level is configured (neither flag nor WIFIPROV_LOG_LEVEL), logging
// is silent. This keeps the daemon quiet under a supervisor by default.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
