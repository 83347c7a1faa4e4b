// Package journal defines the [Journal] interface for recording admission
// outcomes and provides three implementations:
//
//   - [Memory]: fast, in-memory tallies that are lost on restart.
//   - [SQLite]: persistent tallies backed by a SQLite database.
//   - [Buffered]: an in-memory front that flushes to a persistent backend
//     in batches, keeping the record path off the database.
//
// Custom backends can be created by implementing the [Journal] interface.
package journal
