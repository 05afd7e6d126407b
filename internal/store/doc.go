// Package store is the authoritative task store of the daemon.
//
// A Store owns every task for the lifetime of the process. It is loaded from
// a storage.Backend on Open and flushed back on Close; every mutation writes
// the full task set through the backend while holding the store lock, so the
// in-memory and durable views never diverge except for a final write that
// failed. Pending tasks are additionally kept in a min-heap ordered by
// execute_at, created_at and id so the scheduler can ask for the next
// deadline cheaply.
//
// Create and Cancel signal the Wake channel so a sleeping scheduler picks up
// the change without waiting for its next bounded wake.
package store
