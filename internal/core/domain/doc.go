// Package domain defines the core business entities for tenderwatch.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Tender: A stored public procurement opportunity
//   - TenderRecord: The normalised upsert input one API response yields
//   - KeywordRule: A weighted scoring phrase
//   - Organization: A purchasing institution with its score bias
//   - IngestRun: One recorded execution of the range pipeline
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
