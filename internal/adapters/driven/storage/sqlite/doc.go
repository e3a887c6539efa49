// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - TenderStore: Tender persistence with the field-level refresh rules
//   - RuleStore: Keyword rule persistence
//   - OrganizationStore: Organization and score-bias persistence
//   - QueryRepository: Stage listings, the detail view and stage moves
//   - RunStore: Ingest run history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.tenderwatch/data/tenderwatch.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
