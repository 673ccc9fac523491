// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - BlobStore: Cache entry persistence (file, SQLite, or memory)
//   - Extractor: Turns the bytes of one file type into text
//   - ExtractorRegistry: Selects the extractor for a file extension
//   - IndexBuilder: Builds and decodes relevance indexes
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - OCREngine: Text recognition for scanned PDFs. Without it, image-only
//     PDFs load as placeholder documents.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or extractor package
package driven
