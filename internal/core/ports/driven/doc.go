// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TenderFetcher: Fetches listings and details from the upstream API
//   - TenderStore: Tender persistence with the field-level refresh rules
//   - RuleStore: Keyword rule persistence
//   - OrganizationStore: Organization and score-bias persistence
//   - QueryRepository: The read side consumed by the presentation layer
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RunStore: Ingest run history. Without it, runs are simply not recorded.
package driven
