// Package file provides the TOML configuration store for docqa.
//
// Settings live in config.toml inside the docqa config directory
// (~/.docqa by default). Nested tables are exposed as dot-notation keys,
// so [retrieval] top_k = 5 is read as "retrieval.top_k", and dotted keys
// are written back as nested tables.
package file
