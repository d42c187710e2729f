// Package domain defines the core business entities for polidigest.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes plus a declared type, as handed over by ingestion
//   - Document: The canonical text of one policy document
//   - Chunk: A bounded segment submitted as one unit to the summariser
//   - SectionSpan: A detected policy clause heading and its content
//   - SummaryResult: The condensed, structured summary
//   - Entities: Structured facts recovered from text
//   - ComplianceReport: Clause completeness and risk exposure score
//   - AnalysisResult: The output contract handed to presentation layers
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
