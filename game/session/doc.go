// Package session provides session management for the Pac-Man server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session manager that handles all session operations. The
// sessions themselves are service.Session values, each with its own engine
// and, for realtime sessions, its own loop.
//
// Session Identifiers:
//
// Sessions use 4-character hexadecimal IDs from crypto/rand and are looked up
// case-insensitively.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config, service.WithRealtime(true))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	go manager.RunCleanup(ctx, time.Minute, time.Hour)
//
// Cleanup:
//
// Deleting or expiring a session stops its loop before it is dropped.
// Sessions live in memory only.
package session
