// Package store provides SQLite-backed durable storage for the procedure
// catalog and the call log.
//
// The store keeps:
//   - Catalog: one row per qualified procedure name, with the signature as
//     JSON and its content fingerprint
//   - Calls: an append-only log of finished procedure calls
//
// # Patterns
//
// Fingerprints identify signature shape. SaveCatalog compares them to
// report procedures whose inputs or outputs changed since the last save;
// description edits do not count as changes.
//
// Call ordering uses the seq column (AUTOINCREMENT), never timestamps, so
// reads are deterministic even when calls start within the same instant.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
