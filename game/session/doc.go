// Package session provides session management for the rail puzzle.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Session cleanup and expiration
//
// Each session owns its own engine built from the chosen map, so sessions never share
// board state. Sessions live in memory only; a restart starts from an empty manager.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand. Lookups ignore case.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", "Anna", def)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// CleanupExpiredSessions removes sessions that were not accessed within a given age.
package session
