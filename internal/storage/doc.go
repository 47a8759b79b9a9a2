// Package storage provides the small persistent key-value store that holds
// the session token and username between runs.
//
// Two implementations are provided:
//   - SQLiteStore, backed by a single SQLite file (modernc.org/sqlite, no cgo)
//   - MemoryStore, for tests and for running without persistence
//
// Multi-key writes are atomic, so a token is never stored without its
// username or the other way round:
//
//	err := store.Put(ctx, map[string]string{"token": tok, "username": name})
//	err = store.Delete(ctx, "token", "username")
package storage
