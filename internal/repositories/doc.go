// Package repositories implements SQLite persistence.
//
// [SessionRepository] stores web sessions in the sessions table created by the shared
// migrations and satisfies session.Store, so it can replace the in-memory store when
// sessions should survive a restart.
package repositories
