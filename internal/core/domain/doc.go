// Package domain defines the core business entities for docqa.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Extracted text of one source file
//   - RawFile: Opaque bytes read from the document directory
//   - CacheEntry: A fingerprinted payload held by a cache store
//   - RetrievalResult: A ranked document returned for a query
//   - Snapshot: A published, immutable corpus
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
