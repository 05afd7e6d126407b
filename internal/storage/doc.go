// Package storage provides the durable backends behind the task store.
//
// Two drivers are supported:
//   - "file": one JSON document, replaced atomically (tmp file, fsync, rename)
//   - "sqlite": a SQLite database, replaced inside a single transaction
//
// A backend only loads and saves whole task sets; all locking and state
// transitions live in the store package.
package storage
