// Package session keeps the live Decodoku puzzle sessions.
//
// Each session owns its own puzzle engine, so lattices, selections and move
// history never leak between players. Sessions are held in memory and are
// lost when the process exits.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs generated from crypto/rand. Callers may
// also pick their own ID. Lookups are case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", engine.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// CleanupExpiredSessions removes sessions idle for longer than the given
// duration; the server runs it periodically.
package session
