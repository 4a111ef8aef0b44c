// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// App database repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [HarvestRepository] : Harvest run history with status-based queries and bulk clearing
//   - [MovieRepository] : Movie rows inside standalone SQLite dataset files (the sqlite export format)
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// [MovieRepository] is the odd one out: it targets throwaway dataset files rather
// than the app database, owns its own schema via EnsureSchema, and performs no
// soft deletes because datasets are replaced wholesale on export.
package repositories
